package brain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"pagepilot/internal/core/domain"
	"pagepilot/internal/core/ports"

	"google.golang.org/genai"
)

// FallbackReply is published when the generative backend fails recoverably.
// A degraded-but-polite reply beats aborting the scan cycle.
const FallbackReply = "Thank you so much for your comment! We really appreciate it."

const replySystemPrompt = `You are the admin of a Facebook fan page replying to a comment.
- Write in the requested tone.
- Keep it short, under 30 words.
- Sound natural, like a real person chatting.`

const postSystemPrompt = `You are an expert content creator role-playing a specific persona to write a Facebook post.

PERSONA:
- Name: %s
- Role: %s
- Writing style: %s
- Catchphrases: %q
- Dominant tone: %s

REQUIREMENTS:
1. The hook must carry the persona's voice.
2. Keep the body short, punchy and split into readable paragraphs.
3. Close with a call to action phrased the way this persona speaks.
4. Use emoji consistent with the style.
5. Also produce an English image prompt for an illustration.`

// GenerationError marks AI output that failed or was unusable. Callers
// substitute the fallback text or surface it, depending on the path.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Err)
	}
	return "generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

type modelConfig struct {
	Name string
	RPM  int
	RPD  int
}

// GeminiBrain implements ports.Brain on top of the Gemini API, with a model
// ladder and local RPM/RPD budgets so a throttled model falls through to the
// next one.
type GeminiBrain struct {
	Client     *genai.Client
	Models     []modelConfig
	ImageModel string

	// seam for tests; defaults to the real API call
	generate func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error)

	dailyCount   map[string]int
	minuteCount  map[string]int
	lastResetDay time.Time
	lastResetMin time.Time
	mu           sync.Mutex
}

func NewGeminiBrain(ctx context.Context, apiKey string) (*GeminiBrain, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}

	b := &GeminiBrain{
		Client: client,
		Models: []modelConfig{
			{Name: "gemini-2.5-flash", RPM: 10, RPD: 250},
			{Name: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
		},
		ImageModel:   "gemini-2.5-flash-image",
		dailyCount:   make(map[string]int),
		minuteCount:  make(map[string]int),
		lastResetDay: time.Now(),
		lastResetMin: time.Now(),
	}
	b.generate = b.callModel
	return b, nil
}

// Ensure implementation
var _ ports.Brain = (*GeminiBrain)(nil)

// GenerateReply drafts a short reply for a comment. Recoverable upstream
// failure degrades to FallbackReply instead of propagating, so one bad draft
// never aborts a scan cycle.
func (b *GeminiBrain) GenerateReply(ctx context.Context, commentText, postText, tone string) (string, error) {
	prompt := fmt.Sprintf("Post: %q\nComment: %q\nReply tone: %s\nReply:", postText, commentText, tone)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(replySystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "text/plain",
	}

	text, err := b.tryModels(ctx, prompt, cfg)
	if err != nil {
		if recoverable(err) {
			return FallbackReply, nil
		}
		return "", &GenerationError{Message: "reply draft", Err: err}
	}
	return strings.TrimSpace(text), nil
}

// GeneratePost writes a persona-voiced post with hashtags and an image
// prompt, enforced through a JSON response schema.
func (b *GeminiBrain) GeneratePost(ctx context.Context, topic domain.Topic, persona domain.Persona, extra string) (*domain.GeneratedPost, error) {
	system := fmt.Sprintf(postSystemPrompt, persona.Name, persona.Role, persona.Style, persona.Catchphrases, persona.Tone)
	prompt := fmt.Sprintf("Topic: %s\nDetails: %s\nExtra context: %s\n\nWrite the post as %s now.",
		topic.Name, topic.Description, extra, persona.Name)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"content":     {Type: genai.TypeString, Description: "The finished Facebook post body."},
				"hashtags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "5-10 trending hashtags."},
				"imagePrompt": {Type: genai.TypeString, Description: "Detailed English image description."},
			},
			Required: []string{"content", "hashtags", "imagePrompt"},
		},
	}

	raw, err := b.tryModels(ctx, prompt, cfg)
	if err != nil {
		return nil, &GenerationError{Message: "post draft", Err: err}
	}

	var post domain.GeneratedPost
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &post); err != nil {
		return nil, &GenerationError{Message: "post draft returned malformed JSON", Err: err}
	}
	if post.Content == "" {
		return nil, &GenerationError{Message: "post draft was empty"}
	}
	return &post, nil
}

// GenerateImage returns a base64 PNG for the prompt, or "" when the model
// produced no image. Failures degrade rather than propagate; the caller can
// always publish text-only.
func (b *GeminiBrain) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if aspectRatio == "" {
		aspectRatio = "4:3"
	}
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
	}

	result, err := b.Client.Models.GenerateContent(ctx, b.ImageModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", nil
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}
	return "", nil
}

func (b *GeminiBrain) tryModels(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	var lastErr error
	for _, m := range b.Models {
		if !b.canUseModel(m) {
			lastErr = fmt.Errorf("local budget exhausted for %s", m.Name)
			continue
		}

		text, err := b.generate(ctx, m.Name, prompt, cfg)
		if err != nil {
			if recoverable(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		b.recordUsage(m)
		return text, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no model available")
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (b *GeminiBrain) callModel(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := b.Client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// recoverable reports whether the failure is worth falling through to the
// next model (or the fallback reply) instead of aborting.
func recoverable(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "exhausted", "404", "not found", "budget", "overloaded", "unavailable", "empty response", "deadline"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func (b *GeminiBrain) canUseModel(m modelConfig) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if now.YearDay() != b.lastResetDay.YearDay() {
		b.dailyCount = make(map[string]int)
		b.lastResetDay = now
	}
	if now.Sub(b.lastResetMin) >= time.Minute {
		b.minuteCount = make(map[string]int)
		b.lastResetMin = now
	}
	if b.dailyCount[m.Name] >= m.RPD {
		return false
	}
	if b.minuteCount[m.Name] >= m.RPM {
		return false
	}
	return true
}

func (b *GeminiBrain) recordUsage(m modelConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyCount[m.Name]++
	b.minuteCount[m.Name]++
}

func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
