package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SaiNageswarS/threads-poster/async"
	"github.com/SaiNageswarS/threads-poster/bootUtils"
	"github.com/SaiNageswarS/threads-poster/config"
	"github.com/SaiNageswarS/threads-poster/llm"
	"github.com/SaiNageswarS/threads-poster/logger"
	"go.uber.org/zap"
)

const (
	// MaxImageBytes caps the image download sent to the model.
	MaxImageBytes = 20 << 20
	// MaxCaptionRunes is the Threads text limit.
	MaxCaptionRunes = 500

	prompt = "You are a social media copywriter for Threads. " +
		"Study the quote shown in the image and craft a single-line caption that resonates with it. " +
		"Keep it under 18 words, use smart rich text (emojis, emphasis) sparingly but effectively, " +
		"and avoid hashtags, quotation marks, or references to the analysis process. " +
		"Respond with caption text only."
)

var (
	SupportedMimeTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

	ErrEmptyCaption = errors.New("model returned an empty caption")
)

type Outcome int

const (
	Generated Outcome = iota
	Fallback
	Disabled
)

func (o Outcome) String() string {
	switch o {
	case Generated:
		return "generated"
	case Fallback:
		return "fallback"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the caption to post. Err is set only for Fallback and holds the
// reason the model output was not used.
type Result struct {
	Text    string
	Outcome Outcome
	Err     error
}

// DisabledResult is posted when captioning is switched off: no text, and the
// fallback is not used.
func DisabledResult() Result {
	return Result{Outcome: Disabled}
}

type inferenceClient interface {
	GenerateInference(ctx context.Context, messages []llm.Message, opts ...llm.LLMOption) <-chan async.Result[string]
}

type Captioner struct {
	client     inferenceClient
	httpClient *http.Client
	model      string
	maxTokens  int
	fallback   string
	timeout    time.Duration
}

func ProvideCaptioner(cfg *config.PosterConfig, client inferenceClient) *Captioner {
	return &Captioner{
		client:     client,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		model:      cfg.ClaudeModel,
		maxTokens:  cfg.ClaudeMaxTokens,
		fallback:   cfg.CaptionFallback,
		timeout:    cfg.CaptionTimeout(),
	}
}

// Caption downloads the image behind imageURL and asks the model for a
// one-line caption. It never fails: any problem yields the fallback text.
func (c *Captioner) Caption(ctx context.Context, imageURL string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.generate(ctx, imageURL)
	if err != nil {
		logger.Warn("Caption generation failed, using fallback", zap.Error(err))
		return Result{Text: c.fallback, Outcome: Fallback, Err: err}
	}
	return Result{Text: text, Outcome: Generated}
}

func (c *Captioner) generate(ctx context.Context, imageURL string) (string, error) {
	data, mimeType, err := c.download(ctx, imageURL)
	if err != nil {
		return "", err
	}

	message := llm.UserMessage(
		llm.TextBlock(prompt),
		llm.ImageBlock(mimeType, base64.StdEncoding.EncodeToString(data)),
	)

	raw, err := async.AwaitContext(ctx, c.client.GenerateInference(ctx, []llm.Message{message},
		llm.WithLLMModel(c.model),
		llm.WithMaxTokens(c.maxTokens),
	))
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}

	text := Normalize(raw)
	if text == "" {
		return "", ErrEmptyCaption
	}
	return text, nil
}

func (c *Captioner) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("downloading image: unexpected status %d", resp.StatusCode)
	}

	data, mimeType, err := bootUtils.BufferImage(resp.Body, SupportedMimeTypes, MaxImageBytes)
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	return data, mimeType, nil
}

// Normalize collapses whitespace to single spaces, strips wrapping quotes and
// truncates to MaxCaptionRunes.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := strings.TrimSpace(strings.Trim(s, "\"'“”‘’"))
		if trimmed == s {
			break
		}
		s = trimmed
	}

	if utf8.RuneCountInString(s) > MaxCaptionRunes {
		s = strings.TrimSpace(string([]rune(s)[:MaxCaptionRunes]))
	}
	return s
}
