package ports

import (
	"context"

	"pagepilot/internal/core/domain"
)

// Page is the adapter contract for the managed social platform.
type Page interface {
	Name() string
	PageID() string
	Initialize(ctx context.Context) error
	Profile(ctx context.Context) (*domain.PageProfile, error)
	GetRecentPosts(ctx context.Context, limit int) ([]domain.Post, error)
	GetComments(ctx context.Context, postID string) ([]domain.Comment, error)
	// ReplyToComment publishes a reply and returns the new reply's ID. The
	// call is not idempotent on the platform side; callers gate it through
	// the reply ledger.
	ReplyToComment(ctx context.Context, commentID, message string) (string, error)
	PublishPost(ctx context.Context, message string) (string, error)
	PublishPhoto(ctx context.Context, message, imageBase64 string) (string, error)
}

// Brain is the adapter contract for the generative backend.
type Brain interface {
	// GenerateReply drafts a short reply to a comment in the given tone.
	// Recoverable upstream failures degrade to a fallback string; an empty
	// result means "no usable draft" and must not be published.
	GenerateReply(ctx context.Context, commentText, postText, tone string) (string, error)
	GeneratePost(ctx context.Context, topic domain.Topic, persona domain.Persona, extra string) (*domain.GeneratedPost, error)
	// GenerateImage returns a base64 PNG, or "" when no image could be
	// produced.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// Storage persists operator settings and bookkeeping. The reply ledger and
// the activity log are deliberately not part of this contract; they live for
// the process only.
type Storage interface {
	SaveToken(pageID, token string) error
	LoadToken(pageID string) (string, error)
	SavePersonas(personas []domain.Persona) error
	LoadPersonas() ([]domain.Persona, error)
	GetReplyStats(pageID string) (count int, date string, err error)
	IncrementReplyCount(pageID string, date string) error
}

type UserAction string

const (
	ActionApprove UserAction = "approve"
	ActionSkip    UserAction = "skip"
)

// Interaction is the operator channel used for confirmations and alerts.
type Interaction interface {
	Confirm(ctx context.Context, title, body string) (UserAction, error)
	Notify(ctx context.Context, text string) error
}
