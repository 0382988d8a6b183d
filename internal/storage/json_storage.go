package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
)

// JSONStorage keeps operator settings in a single local file. Writes go
// through a temp file so a crash never leaves a torn settings file.
type JSONStorage struct {
	FilePath string
	mu       sync.RWMutex
	Data     StorageData
}

type StorageData struct {
	Tokens        map[string]string `json:"tokens"`
	Personas      []domain.Persona  `json:"personas"`
	DailyReplies  map[string]int    `json:"daily_replies"`
	LastReplyDate map[string]string `json:"last_reply_date"`
}

func NewJSONStorage(filePath string) (*JSONStorage, error) {
	s := &JSONStorage{
		FilePath: filePath,
		Data: StorageData{
			Tokens:        make(map[string]string),
			DailyReplies:  make(map[string]int),
			LastReplyDate: make(map[string]string),
		},
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	if err := s.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

var _ ports.Storage = (*JSONStorage)(nil)

func (s *JSONStorage) loadFromFile() error {
	file, err := os.ReadFile(s.FilePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, &s.Data); err != nil {
		return err
	}
	if s.Data.Tokens == nil {
		s.Data.Tokens = make(map[string]string)
	}
	if s.Data.DailyReplies == nil {
		s.Data.DailyReplies = make(map[string]int)
	}
	if s.Data.LastReplyDate == nil {
		s.Data.LastReplyDate = make(map[string]string)
	}
	return nil
}

func (s *JSONStorage) saveToFile() error {
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.FilePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.FilePath)
}

func (s *JSONStorage) SaveToken(pageID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data.Tokens[pageID] = token
	return s.saveToFile()
}

func (s *JSONStorage) LoadToken(pageID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Data.Tokens[pageID], nil
}

func (s *JSONStorage) SavePersonas(personas []domain.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data.Personas = append([]domain.Persona(nil), personas...)
	return s.saveToFile()
}

func (s *JSONStorage) LoadPersonas() ([]domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Persona(nil), s.Data.Personas...), nil
}

func (s *JSONStorage) GetReplyStats(pageID string) (int, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Data.DailyReplies[pageID], s.Data.LastReplyDate[pageID], nil
}

func (s *JSONStorage) IncrementReplyCount(pageID string, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Data.LastReplyDate[pageID] != date {
		s.Data.DailyReplies[pageID] = 1
		s.Data.LastReplyDate[pageID] = date
	} else {
		s.Data.DailyReplies[pageID]++
	}
	return s.saveToFile()
}
