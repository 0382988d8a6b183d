package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"pagepilot/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot provides the operator channel over Telegram: inline-keyboard
// confirmations for instant replies and plain notifications for manual-path
// failures.
type Bot struct {
	API      *tgbotapi.BotAPI
	ChatID   int64
	channels map[int]chan ports.UserAction
	mu       sync.Mutex
}

func NewBot(token string, chatIDStr string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %w", err)
	}

	b := &Bot{
		API:      api,
		ChatID:   chatID,
		channels: make(map[int]chan ports.UserAction),
	}

	go b.listen()
	return b, nil
}

var _ ports.Interaction = (*Bot)(nil)

func (b *Bot) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery == nil {
			continue
		}

		callback := update.CallbackQuery
		action := ports.UserAction(callback.Data)
		msgID := callback.Message.MessageID

		b.mu.Lock()
		ch, ok := b.channels[msgID]
		if ok {
			delete(b.channels, msgID)
		}
		b.mu.Unlock()
		if !ok {
			continue
		}

		ch <- action

		b.API.Request(tgbotapi.NewCallback(callback.ID, "Got it: "+string(action)))
		edit := tgbotapi.NewEditMessageReplyMarkup(b.ChatID, msgID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		b.API.Send(edit)
	}
}

// Confirm sends an approval prompt and blocks until the operator taps a
// button or the context ends.
func (b *Bot) Confirm(ctx context.Context, title, body string) (ports.UserAction, error) {
	msgText := fmt.Sprintf("*[%s]*\n\n%s", escapeMarkdown(title), escapeMarkdown(body))
	msg := tgbotapi.NewMessage(b.ChatID, msgText)
	msg.ParseMode = "Markdown"

	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", string(ports.ActionApprove)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Skip", string(ports.ActionSkip)),
		),
	)

	sentMsg, err := b.API.Send(msg)
	if err != nil {
		return ports.ActionSkip, err
	}

	respCh := make(chan ports.UserAction, 1)
	b.mu.Lock()
	b.channels[sentMsg.MessageID] = respCh
	b.mu.Unlock()

	select {
	case action := <-respCh:
		return action, nil
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.channels, sentMsg.MessageID)
		b.mu.Unlock()
		return ports.ActionSkip, ctx.Err()
	}
}

// Notify sends a plain alert message.
func (b *Bot) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(b.ChatID, escapeMarkdown(text))
	_, err := b.API.Send(msg)
	return err
}

// escapeMarkdown avoids Telegram markdown parse errors in generated text.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
