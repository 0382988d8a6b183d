package autopilot

import "pagepilot/internal/core/domain"

// RepliedSet is the read side of the reply ledger.
type RepliedSet interface {
	Has(commentID string) bool
}

// Eligible decides whether Auto-Pilot should act on a comment. A comment
// qualifies when it has not been answered yet, was not written by the page
// itself, the platform permits a reply, and it passes the session's time
// gate. The ledger check runs first so the common case short-circuits
// without touching network-derived fields.
func Eligible(c domain.Comment, session domain.Session, replied RepliedSet, pageID string) bool {
	if replied.Has(c.ID) {
		return false
	}
	if c.AuthorID == pageID {
		return false
	}
	if !c.CanReply {
		return false
	}
	if session.Policy == domain.PolicyNewOnly && !c.CreatedAt.After(session.StartedAt) {
		return false
	}
	return true
}
