package facebook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"
)

const DefaultBaseURL = "https://graph.facebook.com/v19.0"

const (
	feedFields    = "id,message,created_time,full_picture,comments.summary(true).limit(0),likes.summary(true).limit(0),shares"
	commentFields = "id,message,from,created_time,can_reply"
	profileFields = "id,name,picture.width(200).height(200),followers_count,fan_count,about"

	scopeReadEngagement   = "pages_read_engagement"
	scopeManageEngagement = "pages_manage_engagement"
	scopeManagePosts      = "pages_manage_posts"

	// Comment listing cap per post; the feed itself is capped at 25.
	commentPageSize = 50
)

// Client is the adapter for the Facebook Graph API. It implements ports.Page
// and owns authentication, data mapping and error translation.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Storage     ports.Storage
	pageID      string
	accessToken string
}

func NewClient(pageID, accessToken string, storage ports.Storage) *Client {
	return &Client{
		BaseURL:     DefaultBaseURL,
		HTTPClient:  &http.Client{},
		Storage:     storage,
		pageID:      pageID,
		accessToken: accessToken,
	}
}

// Ensure Client implements Page interface
var _ ports.Page = (*Client)(nil)

func (c *Client) Name() string {
	return "facebook"
}

func (c *Client) PageID() string {
	return c.pageID
}

// Initialize resolves the access token (explicit config wins, then the saved
// one) and verifies it against the page profile endpoint.
func (c *Client) Initialize(ctx context.Context) error {
	fromConfig := c.accessToken != ""
	if c.accessToken == "" && c.Storage != nil {
		token, _ := c.Storage.LoadToken(c.pageID)
		c.accessToken = token
	}
	if c.accessToken == "" {
		return &AuthError{Message: "no access token configured"}
	}

	if _, err := c.Profile(ctx); err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}

	if fromConfig && c.Storage != nil {
		if err := c.Storage.SaveToken(c.pageID, c.accessToken); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (*domain.PageProfile, error) {
	q := url.Values{}
	q.Set("fields", profileFields)

	var p apiProfile
	if err := c.get(ctx, "/"+c.pageID, q, scopeReadEngagement, &p); err != nil {
		return nil, err
	}

	profile := &domain.PageProfile{
		ID:             p.ID,
		Name:           p.Name,
		FollowersCount: p.FollowersCount,
		FanCount:       p.FanCount,
		About:          p.About,
	}
	if p.Picture != nil {
		profile.PictureURL = p.Picture.Data.URL
	}
	return profile, nil
}

// GetRecentPosts implements ports.Page
func (c *Client) GetRecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 || limit > 25 {
		limit = 25
	}
	q := url.Values{}
	q.Set("fields", feedFields)
	q.Set("limit", strconv.Itoa(limit))

	var data struct {
		Data []apiPost `json:"data"`
	}
	if err := c.get(ctx, "/"+c.pageID+"/feed", q, scopeReadEngagement, &data); err != nil {
		return nil, err
	}

	var posts []domain.Post
	for _, p := range data.Data {
		post := domain.Post{
			ID:         p.ID,
			Message:    p.Message,
			PictureURL: p.FullPicture,
			CreatedAt:  parseGraphTime(p.CreatedTime),
		}
		if p.Comments != nil {
			post.CommentCount = p.Comments.Summary.TotalCount
		}
		if p.Likes != nil {
			post.LikeCount = p.Likes.Summary.TotalCount
		}
		if p.Shares != nil {
			post.ShareCount = p.Shares.Count
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// GetComments implements ports.Page
func (c *Client) GetComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	q := url.Values{}
	q.Set("fields", commentFields)
	q.Set("limit", strconv.Itoa(commentPageSize))

	var data struct {
		Data []apiComment `json:"data"`
	}
	if err := c.get(ctx, "/"+postID+"/comments", q, scopeReadEngagement, &data); err != nil {
		return nil, err
	}

	var comments []domain.Comment
	for _, cm := range data.Data {
		comment := domain.Comment{
			ID:        cm.ID,
			PostID:    postID,
			Message:   cm.Message,
			CreatedAt: parseGraphTime(cm.CreatedTime),
			CanReply:  cm.CanReply,
		}
		if cm.From != nil {
			comment.AuthorID = cm.From.ID
			comment.AuthorName = cm.From.Name
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// ReplyToComment implements ports.Page. Not idempotent on the platform side:
// calling it twice creates two replies.
func (c *Client) ReplyToComment(ctx context.Context, commentID, message string) (string, error) {
	return c.postJSON(ctx, "/"+commentID+"/comments", message, scopeManageEngagement)
}

// PublishPost implements ports.Page
func (c *Client) PublishPost(ctx context.Context, message string) (string, error) {
	return c.postJSON(ctx, "/"+c.pageID+"/feed", message, scopeManagePosts)
}

// PublishPhoto implements ports.Page. Uploads the image as multipart form
// data the way the Graph /photos edge expects.
func (c *Client) PublishPhoto(ctx context.Context, message, imageBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", fmt.Errorf("invalid image payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("source", "photo.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(raw); err != nil {
		return "", err
	}
	_ = w.WriteField("message", message)
	_ = w.WriteField("access_token", c.accessToken)
	_ = w.WriteField("published", "true")
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/"+c.pageID+"/photos", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res publishResponse
	if err := c.do(req, scopeManagePosts, &res); err != nil {
		return "", err
	}
	if res.ID != "" {
		return res.ID, nil
	}
	return res.PostID, nil
}

func (c *Client) postJSON(ctx context.Context, path, message, scope string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{
		"message":      message,
		"access_token": c.accessToken,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var res publishResponse
	if err := c.do(req, scope, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, scope string, out any) error {
	q.Set("access_token", c.accessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, scope, out)
}

// do runs the request and decodes either the Graph error envelope or the
// expected payload.
func (c *Client) do(req *http.Request, scope string, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &PlatformError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PlatformError{Message: err.Error()}
	}

	var envelope graphErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return mapError(envelope.Error.Code, envelope.Error.Message, scope)
	}
	if resp.StatusCode != http.StatusOK {
		return &PlatformError{Code: resp.StatusCode, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
