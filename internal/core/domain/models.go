package domain

import "time"

// Post represents a single entry on the managed page's feed.
type Post struct {
	ID           string
	Message      string // may be empty for media-only posts
	PictureURL   string
	CreatedAt    time.Time
	CommentCount int
	LikeCount    int
	ShareCount   int
}

// Comment represents a comment on a post. ID is the sole de-duplication key.
type Comment struct {
	ID         string
	PostID     string
	Message    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	CanReply   bool
}

// ReplyPolicy selects which comments Auto-Pilot considers.
type ReplyPolicy string

const (
	// PolicyNewOnly answers only comments created after the session started.
	PolicyNewOnly ReplyPolicy = "NEW_ONLY"
	// PolicyAllUnanswered answers every comment not yet in the ledger.
	PolicyAllUnanswered ReplyPolicy = "ALL_UNANSWERED"
)

// Session is one contiguous Auto-Pilot "on" period. StartedAt is fixed for
// the session's lifetime and is the time-gate reference under PolicyNewOnly.
// Changing policy or tone ends the session and starts a fresh one.
type Session struct {
	StartedAt time.Time
	Policy    ReplyPolicy
	Tone      string
}

// LogKind classifies an activity log entry.
type LogKind string

const (
	LogInfo    LogKind = "info"
	LogAction  LogKind = "action"
	LogSuccess LogKind = "success"
	LogError   LogKind = "error"
)

// LogEntry is one audit record in the activity log.
type LogEntry struct {
	ID        string
	Timestamp time.Time
	Kind      LogKind
	Message   string
}

// Persona is a named writing-voice profile for the post generation flow.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Style        string `json:"style"`
	Catchphrases string `json:"catchphrases"`
	Tone         string `json:"tone"`
}

// Topic describes a subject the page posts about.
type Topic struct {
	Name        string
	Description string
}

// GeneratedPost is the structured output of the post generation flow.
type GeneratedPost struct {
	Content     string   `json:"content"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt"`
	ImageBase64 string   `json:"-"`
}

// PageProfile is the managed page's public profile.
type PageProfile struct {
	ID             string
	Name           string
	PictureURL     string
	FollowersCount int
	FanCount       int
	About          string
}
