package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pagepilot/internal/core/domain"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (an .env
// file is honored when present).
type Config struct {
	PageID         string
	AccessToken    string
	GeminiAPIKey   string
	TelegramToken  string
	TelegramChatID string
	DatabaseURL    string
	StatePath      string

	ScanInterval time.Duration
	ReplyDelay   time.Duration
	ReplyTone    string
	ReplyPolicy  domain.ReplyPolicy
	AutoStart    bool
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		PageID:         strings.TrimSpace(os.Getenv("PAGE_ID")),
		AccessToken:    strings.TrimSpace(os.Getenv("FB_ACCESS_TOKEN")),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID: strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StatePath:      strings.TrimSpace(os.Getenv("STATE_PATH")),
		ScanInterval:   20 * time.Second,
		ReplyDelay:     3 * time.Second,
		ReplyTone:      "Friendly and humorous",
		ReplyPolicy:    domain.PolicyNewOnly,
	}

	if cfg.PageID == "" {
		return nil, fmt.Errorf("PAGE_ID is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "data/pagepilot.json"
	}

	if v := strings.TrimSpace(os.Getenv("SCAN_INTERVAL")); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("SCAN_INTERVAL must be a positive number of seconds")
		}
		cfg.ScanInterval = time.Duration(secs) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv("REPLY_DELAY")); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("REPLY_DELAY must be a non-negative number of seconds")
		}
		cfg.ReplyDelay = time.Duration(secs) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv("REPLY_TONE")); v != "" {
		cfg.ReplyTone = v
	}
	if v := strings.TrimSpace(os.Getenv("REPLY_POLICY")); v != "" {
		switch domain.ReplyPolicy(v) {
		case domain.PolicyNewOnly, domain.PolicyAllUnanswered:
			cfg.ReplyPolicy = domain.ReplyPolicy(v)
		default:
			return nil, fmt.Errorf("REPLY_POLICY must be %s or %s", domain.PolicyNewOnly, domain.PolicyAllUnanswered)
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUTO_START")); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AUTO_START must be a boolean")
		}
		cfg.AutoStart = on
	}

	return cfg, nil
}
