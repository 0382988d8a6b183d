package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"pagepilot/internal/autopilot"
	"pagepilot/internal/brain"
	"pagepilot/internal/config"
	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
	"pagepilot/internal/facebook"
	"pagepilot/internal/storage"
	"pagepilot/internal/ui/telegram"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pagepilot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zapCfg := zap.NewProductionConfig()
	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var store ports.Storage
	if cfg.DatabaseURL != "" {
		store, err = storage.NewPostgresStorage(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.Info("storage ready", zap.String("backend", "postgres"))
	} else {
		store, err = storage.NewJSONStorage(cfg.StatePath)
		if err != nil {
			return err
		}
		logger.Info("storage ready", zap.String("backend", "json"), zap.String("path", cfg.StatePath))
	}

	mind, err := brain.NewGeminiBrain(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}

	var ui ports.Interaction
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		ui, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		logger.Info("telegram operator channel ready")
	}

	page := facebook.NewClient(cfg.PageID, cfg.AccessToken, store)
	if err := page.Initialize(ctx); err != nil {
		return err
	}
	profile, err := page.Profile(ctx)
	if err != nil {
		return err
	}
	logger.Info("page connected", zap.String("page", profile.Name), zap.String("id", profile.ID))

	ledger := autopilot.NewLedger()
	activity := autopilot.NewActivityLog(autopilot.DefaultLogCapacity)
	activity.Subscribe(func(e domain.LogEntry) {
		logger.Info("activity", zap.String("kind", string(e.Kind)), zap.String("msg", e.Message))
	})

	scanner := autopilot.NewScanner(page, mind, ledger, activity, store, logger)
	scanner.ScanInterval = cfg.ScanInterval
	scanner.ReplyDelay = cfg.ReplyDelay

	moderator := autopilot.NewModerator(page, mind, ledger, activity, store, ui)

	if cfg.AutoStart {
		scanner.Start(cfg.ReplyPolicy, cfg.ReplyTone)
	}

	return repl(ctx, cfg, logger, scanner, moderator, ledger, page, mind, store)
}

// repl is the operator console: a line-oriented command loop on stdin.
func repl(ctx context.Context, cfg *config.Config, logger *zap.Logger,
	scanner *autopilot.Scanner, moderator *autopilot.Moderator, ledger *autopilot.Ledger,
	page ports.Page, mind ports.Brain, store ports.Storage) error {

	fmt.Println("commands: on | off | scan | review | post <topic> | status | quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			scanner.Stop()
			return nil
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

		switch cmd {
		case "", "status":
			if session, ok := scanner.Session(); ok {
				fmt.Printf("auto-pilot RUNNING since %s policy=%s tone=%q\n",
					session.StartedAt.Format("15:04:05"), session.Policy, session.Tone)
			} else {
				fmt.Println("auto-pilot STOPPED")
			}
			count, date, _ := store.GetReplyStats(page.PageID())
			fmt.Printf("replies today: %d (%s), ledger size: %d\n", count, date, ledger.Len())
		case "on":
			scanner.Start(cfg.ReplyPolicy, cfg.ReplyTone)
		case "off":
			scanner.Stop()
		case "scan":
			scanner.ScanNow()
		case "review":
			if err := moderator.ReviewPending(ctx, cfg.ReplyTone, autopilot.DefaultPostsPerScan); err != nil {
				logger.Warn("review pass failed", zap.Error(err))
			}
		case "post":
			if arg == "" {
				fmt.Println("usage: post <topic>")
				continue
			}
			publishTopic(ctx, logger, page, mind, store, arg)
		case "quit", "exit":
			scanner.Stop()
			return nil
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

// publishTopic runs the post generation flow: persona-voiced copy, an
// optional illustration, then a feed or photo publish.
func publishTopic(ctx context.Context, logger *zap.Logger, page ports.Page, mind ports.Brain, store ports.Storage, topicName string) {
	personas, _ := store.LoadPersonas()
	persona := domain.Persona{Name: "Page Admin", Role: "Community manager", Style: "Short and warm", Tone: "Friendly"}
	if len(personas) > 0 {
		persona = personas[0]
	}

	post, err := mind.GeneratePost(ctx, domain.Topic{Name: topicName}, persona, "")
	if err != nil {
		logger.Warn("post generation failed", zap.Error(err))
		return
	}

	message := post.Content
	if len(post.Hashtags) > 0 {
		message += "\n\n" + strings.Join(post.Hashtags, " ")
	}

	image, _ := mind.GenerateImage(ctx, post.ImagePrompt, "4:3")

	var id string
	if image != "" {
		id, err = page.PublishPhoto(ctx, message, image)
	} else {
		id, err = page.PublishPost(ctx, message)
	}
	if err != nil {
		logger.Warn("publish failed", zap.Error(err))
		return
	}
	logger.Info("published", zap.String("post", id), zap.Bool("with_photo", image != ""))
}
