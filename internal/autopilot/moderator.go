package autopilot

import (
	"context"
	"errors"
	"strings"
	"time"

	"pagepilot/internal/brain"
	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
)

// ErrDeclined is returned when the operator rejects an instant reply.
var ErrDeclined = errors.New("instant reply declined by operator")

// Moderator drives the manual reply paths. It shares the ledger and the
// activity log with the scanner, so a comment answered by a human is never
// auto-answered afterwards.
type Moderator struct {
	page     ports.Page
	brain    ports.Brain
	ledger   *Ledger
	activity *ActivityLog
	store    ports.Storage
	ui       ports.Interaction
}

func NewModerator(page ports.Page, b ports.Brain, ledger *Ledger, activity *ActivityLog, store ports.Storage, ui ports.Interaction) *Moderator {
	return &Moderator{page: page, brain: b, ledger: ledger, activity: activity, store: store, ui: ui}
}

// Suggest drafts a reply for operator editing. It publishes nothing and
// leaves the ledger untouched.
func (m *Moderator) Suggest(ctx context.Context, comment domain.Comment, post domain.Post, tone string) (string, error) {
	draft, err := m.brain.GenerateReply(ctx, comment.Message, post.Message, tone)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(draft), nil
}

// Send publishes operator-approved text and marks the ledger, exactly like
// the automatic path does.
func (m *Moderator) Send(ctx context.Context, comment domain.Comment, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("reply text is empty")
	}
	if _, err := m.page.ReplyToComment(ctx, comment.ID, text); err != nil {
		return err
	}
	m.markReplied(comment, text)
	return nil
}

// InstantReply is the one-shot draft+publish+mark combination for a single
// comment, gated by operator confirmation. Works whether or not Auto-Pilot
// is running.
func (m *Moderator) InstantReply(ctx context.Context, comment domain.Comment, post domain.Post, tone string) (string, error) {
	if m.ui != nil {
		action, err := m.ui.Confirm(ctx,
			"Instant reply",
			"Let AI answer the comment by \""+comment.AuthorName+"\" in tone \""+tone+"\"?\n\n"+comment.Message)
		if err != nil {
			return "", err
		}
		if action != ports.ActionApprove {
			return "", ErrDeclined
		}
	}

	draft, err := m.brain.GenerateReply(ctx, comment.Message, post.Message, tone)
	if err != nil {
		return "", err
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return "", &brain.GenerationError{Message: "no usable draft"}
	}

	if _, err := m.page.ReplyToComment(ctx, comment.ID, draft); err != nil {
		return "", err
	}
	m.markReplied(comment, draft)
	return draft, nil
}

// ReviewPending walks recent posts and offers an instant reply for every
// unanswered comment, one confirmation at a time. Intended for use while
// Auto-Pilot is off.
func (m *Moderator) ReviewPending(ctx context.Context, tone string, postLimit int) error {
	if postLimit <= 0 {
		postLimit = DefaultPostsPerScan
	}
	session := domain.Session{Policy: domain.PolicyAllUnanswered, Tone: tone}

	posts, err := m.page.GetRecentPosts(ctx, postLimit)
	if err != nil {
		return err
	}
	for _, post := range posts {
		comments, err := m.page.GetComments(ctx, post.ID)
		if err != nil {
			m.activity.Error("Could not fetch comments for post ...%s: %v", shortID(post.ID), err)
			continue
		}
		for _, comment := range comments {
			if !Eligible(comment, session, m.ledger, m.page.PageID()) {
				continue
			}
			if _, err := m.InstantReply(ctx, comment, post, tone); err != nil {
				if errors.Is(err, ErrDeclined) {
					continue
				}
				m.activity.Error("Could not reply to %s: %v", comment.AuthorName, err)
			}
		}
	}
	return nil
}

func (m *Moderator) markReplied(comment domain.Comment, text string) {
	m.ledger.MarkReplied(comment.ID)
	m.activity.Success("Replied to %s: %q", comment.AuthorName, text)
	if m.store != nil {
		_ = m.store.IncrementReplyCount(m.page.PageID(), time.Now().Format("2006-01-02"))
	}
}
