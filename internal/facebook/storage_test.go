package facebook

import (
	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
)

// memoryStore is a minimal in-memory ports.Storage for token tests.
type memoryStore struct {
	tokens map[string]string
}

var _ ports.Storage = (*memoryStore)(nil)

func (s *memoryStore) SaveToken(pageID, token string) error {
	s.tokens[pageID] = token
	return nil
}

func (s *memoryStore) LoadToken(pageID string) (string, error) {
	return s.tokens[pageID], nil
}

func (s *memoryStore) SavePersonas([]domain.Persona) error          { return nil }
func (s *memoryStore) LoadPersonas() ([]domain.Persona, error)      { return nil, nil }
func (s *memoryStore) GetReplyStats(string) (int, string, error)    { return 0, "", nil }
func (s *memoryStore) IncrementReplyCount(string, string) error     { return nil }
