package autopilot

import (
	"testing"
	"time"

	"pagepilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestEligible(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	newOnly := domain.Session{StartedAt: start, Policy: domain.PolicyNewOnly}
	allUnanswered := domain.Session{StartedAt: start, Policy: domain.PolicyAllUnanswered}

	base := domain.Comment{
		ID:        "c1",
		AuthorID:  "visitor",
		CreatedAt: start.Add(5 * time.Second),
		CanReply:  true,
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Comment)
		session domain.Session
		replied []string
		want    bool
	}{
		{name: "new comment passes", session: newOnly, want: true},
		{
			name:    "created before session start is gated under NEW_ONLY",
			mutate:  func(c *domain.Comment) { c.CreatedAt = start.Add(-time.Minute) },
			session: newOnly,
			want:    false,
		},
		{
			name:    "created exactly at session start is gated under NEW_ONLY",
			mutate:  func(c *domain.Comment) { c.CreatedAt = start },
			session: newOnly,
			want:    false,
		},
		{
			name:    "old comment passes under ALL_UNANSWERED",
			mutate:  func(c *domain.Comment) { c.CreatedAt = start.Add(-time.Hour) },
			session: allUnanswered,
			want:    true,
		},
		{
			name:    "already in ledger",
			session: allUnanswered,
			replied: []string{"c1"},
			want:    false,
		},
		{
			name:    "page's own comment is excluded regardless of policy",
			mutate:  func(c *domain.Comment) { c.AuthorID = pageID },
			session: allUnanswered,
			want:    false,
		},
		{
			name:    "platform forbids replying",
			mutate:  func(c *domain.Comment) { c.CanReply = false },
			session: newOnly,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()
			for _, id := range tt.replied {
				ledger.MarkReplied(id)
			}
			c := base
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			assert.Equal(t, tt.want, Eligible(c, tt.session, ledger, pageID))
		})
	}
}
