package autopilot

import (
	"context"
	"strings"
	"sync"
	"time"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"

	"go.uber.org/zap"
)

const (
	// DefaultScanInterval is the fixed polling period. Not adaptive; the
	// per-reply delay and per-cycle post cap are the backpressure knobs.
	DefaultScanInterval = 20 * time.Second
	// DefaultReplyDelay paces successive replies within one cycle to stay
	// under platform rate limits.
	DefaultReplyDelay = 3 * time.Second
	// DefaultPostsPerScan bounds per-cycle cost to the most recent slice of
	// the feed.
	DefaultPostsPerScan = 10
)

// Scanner is the Auto-Pilot engine: a two-state (stopped/running) machine
// driving a fixed-interval scan over recent posts and their comments. Each
// cycle drafts and publishes replies for eligible comments, isolating every
// per-item failure so a single platform error never stops the loop. Only
// explicit deactivation does.
type Scanner struct {
	page     ports.Page
	brain    ports.Brain
	ledger   *Ledger
	activity *ActivityLog
	store    ports.Storage
	log      *zap.Logger

	ScanInterval time.Duration
	ReplyDelay   time.Duration
	PostsPerScan int

	mu       sync.Mutex
	session  *domain.Session
	cancel   context.CancelFunc
	trigger  chan struct{}
	lastScan time.Time
	onReply  func(commentID, text string)
}

func NewScanner(page ports.Page, brain ports.Brain, ledger *Ledger, activity *ActivityLog, store ports.Storage, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		page:         page,
		brain:        brain,
		ledger:       ledger,
		activity:     activity,
		store:        store,
		log:          log,
		ScanInterval: DefaultScanInterval,
		ReplyDelay:   DefaultReplyDelay,
		PostsPerScan: DefaultPostsPerScan,
	}
}

// OnReply sets a callback fired after every successful automatic reply, used
// by the presentation layer to show the published draft next to the comment.
func (s *Scanner) OnReply(fn func(commentID, text string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReply = fn
}

func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Session returns the active session, if any.
func (s *Scanner) Session() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

func (s *Scanner) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// Start activates Auto-Pilot: it fixes a fresh session start time, runs one
// scan immediately and then re-scans on a fixed interval. Starting while
// already running is a no-op.
func (s *Scanner) Start(policy domain.ReplyPolicy, tone string) {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return
	}
	session := domain.Session{StartedAt: time.Now(), Policy: policy, Tone: tone}
	ctx, cancel := context.WithCancel(context.Background())
	s.session = &session
	s.cancel = cancel
	s.trigger = make(chan struct{}, 1)
	trigger := s.trigger
	s.mu.Unlock()

	mode := "new comments only"
	if policy == domain.PolicyAllUnanswered {
		mode = "all unanswered comments"
	}
	s.activity.Info("Auto-Pilot engaged. Mode: %s.", mode)
	s.log.Info("autopilot started",
		zap.String("policy", string(policy)),
		zap.String("tone", tone))

	go s.run(ctx, session, trigger)
}

// Stop deactivates Auto-Pilot. The timer is cancelled so no further cycles
// are scheduled; a cycle already in flight finishes and its ledger and log
// updates still apply.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session = nil
	cancel := s.cancel
	s.cancel = nil
	s.lastScan = time.Time{}
	s.mu.Unlock()

	cancel()
	s.activity.Info("Auto-Pilot disengaged.")
	s.log.Info("autopilot stopped")
}

// Restart applies a policy or tone change: the current session ends and a
// new one starts with a fresh time-gate reference.
func (s *Scanner) Restart(policy domain.ReplyPolicy, tone string) {
	s.Stop()
	s.Start(policy, tone)
}

// ScanNow requests an extra cycle outside the fixed schedule. No-op when
// stopped or when a trigger is already pending.
func (s *Scanner) ScanNow() {
	s.mu.Lock()
	trigger := s.trigger
	running := s.session != nil
	s.mu.Unlock()
	if !running {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

func (s *Scanner) run(ctx context.Context, session domain.Session, trigger chan struct{}) {
	// Cycles run on a detached context: cancellation stops the timer, not
	// in-flight network calls.
	cycleCtx := context.WithoutCancel(ctx)
	s.scan(cycleCtx, session)

	ticker := time.NewTicker(s.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(cycleCtx, session)
		case <-trigger:
			s.scan(cycleCtx, session)
		}
	}
}

// scan is one full pass: recent posts, their comments, eligible comments
// answered in listing order. Every fetch, draft and publish failure is
// logged at its own granularity and the loop moves on.
func (s *Scanner) scan(ctx context.Context, session domain.Session) {
	s.mu.Lock()
	s.lastScan = time.Now()
	s.mu.Unlock()

	posts, err := s.page.GetRecentPosts(ctx, s.PostsPerScan)
	if err != nil {
		s.activity.Error("Scan cycle failed: %v", err)
		s.log.Warn("feed fetch failed", zap.Error(err))
		return
	}

	for _, post := range posts {
		comments, err := s.page.GetComments(ctx, post.ID)
		if err != nil {
			s.activity.Error("Could not fetch comments for post ...%s: %v", shortID(post.ID), err)
			s.log.Warn("comment fetch failed", zap.String("post", post.ID), zap.Error(err))
			continue
		}

		var pending []domain.Comment
		for _, c := range comments {
			if Eligible(c, session, s.ledger, s.page.PageID()) {
				pending = append(pending, c)
			}
		}
		if len(pending) == 0 {
			continue
		}
		s.activity.Action("Found %d comments awaiting a reply on post ...%s", len(pending), shortID(post.ID))

		for _, comment := range pending {
			s.replyTo(ctx, session, post, comment)
			time.Sleep(s.ReplyDelay)
		}
	}
}

func (s *Scanner) replyTo(ctx context.Context, session domain.Session, post domain.Post, comment domain.Comment) {
	s.activity.Action("Drafting a reply to %q...", comment.AuthorName)

	draft, err := s.brain.GenerateReply(ctx, comment.Message, post.Message, session.Tone)
	if err != nil {
		s.activity.Error("Could not draft a reply to %s: %v", comment.AuthorName, err)
		s.log.Warn("draft failed", zap.String("comment", comment.ID), zap.Error(err))
		return
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		s.activity.Error("No usable draft for %s, skipping.", comment.AuthorName)
		return
	}

	if _, err := s.page.ReplyToComment(ctx, comment.ID, draft); err != nil {
		// Ledger stays untouched so the next cycle re-offers this comment.
		s.activity.Error("Could not reply to %s: %v", comment.AuthorName, err)
		s.log.Warn("publish failed", zap.String("comment", comment.ID), zap.Error(err))
		return
	}

	s.ledger.MarkReplied(comment.ID)
	s.activity.Success("Replied to %s: %q", comment.AuthorName, draft)
	s.log.Info("replied",
		zap.String("comment", comment.ID),
		zap.String("author", comment.AuthorName))

	if s.store != nil {
		if err := s.store.IncrementReplyCount(s.page.PageID(), time.Now().Format("2006-01-02")); err != nil {
			s.log.Warn("reply stats update failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	fn := s.onReply
	s.mu.Unlock()
	if fn != nil {
		fn(comment.ID, draft)
	}
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
