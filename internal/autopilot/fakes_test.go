package autopilot

import (
	"context"
	"sync"
	"time"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
)

type publishedReply struct {
	CommentID string
	Text      string
	At        time.Time
}

type fakePage struct {
	mu          sync.Mutex
	pageID      string
	posts       []domain.Post
	comments    map[string][]domain.Comment
	replies     []publishedReply
	feedErr     error
	commentsErr map[string]error
	publishErr  map[string]error
}

func newFakePage(pageID string) *fakePage {
	return &fakePage{
		pageID:      pageID,
		comments:    make(map[string][]domain.Comment),
		commentsErr: make(map[string]error),
		publishErr:  make(map[string]error),
	}
}

var _ ports.Page = (*fakePage)(nil)

func (p *fakePage) Name() string                         { return "fake" }
func (p *fakePage) PageID() string                       { return p.pageID }
func (p *fakePage) Initialize(ctx context.Context) error { return nil }

func (p *fakePage) Profile(ctx context.Context) (*domain.PageProfile, error) {
	return &domain.PageProfile{ID: p.pageID, Name: "Fake Page"}, nil
}

func (p *fakePage) GetRecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.feedErr != nil {
		return nil, p.feedErr
	}
	posts := p.posts
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return append([]domain.Post(nil), posts...), nil
}

func (p *fakePage) GetComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.commentsErr[postID]; err != nil {
		return nil, err
	}
	return append([]domain.Comment(nil), p.comments[postID]...), nil
}

func (p *fakePage) ReplyToComment(ctx context.Context, commentID, message string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.publishErr[commentID]; err != nil {
		return "", err
	}
	p.replies = append(p.replies, publishedReply{CommentID: commentID, Text: message, At: time.Now()})
	return commentID + "_reply", nil
}

func (p *fakePage) PublishPost(ctx context.Context, message string) (string, error) {
	return "post_1", nil
}

func (p *fakePage) PublishPhoto(ctx context.Context, message, imageBase64 string) (string, error) {
	return "photo_1", nil
}

func (p *fakePage) published() []publishedReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedReply(nil), p.replies...)
}

type fakeBrain struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

var _ ports.Brain = (*fakeBrain)(nil)

func (b *fakeBrain) GenerateReply(ctx context.Context, commentText, postText, tone string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.reply, b.err
}

func (b *fakeBrain) GeneratePost(ctx context.Context, topic domain.Topic, persona domain.Persona, extra string) (*domain.GeneratedPost, error) {
	return &domain.GeneratedPost{Content: "post"}, nil
}

func (b *fakeBrain) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	return "", nil
}

type fakeUI struct {
	action   ports.UserAction
	err      error
	confirms int
}

var _ ports.Interaction = (*fakeUI)(nil)

func (u *fakeUI) Confirm(ctx context.Context, title, body string) (ports.UserAction, error) {
	u.confirms++
	return u.action, u.err
}

func (u *fakeUI) Notify(ctx context.Context, text string) error { return nil }

func comment(id, postID, author string, createdAt time.Time) domain.Comment {
	return domain.Comment{
		ID:         id,
		PostID:     postID,
		Message:    "hello",
		AuthorID:   author,
		AuthorName: "User " + author,
		CreatedAt:  createdAt,
		CanReply:   true,
	}
}
