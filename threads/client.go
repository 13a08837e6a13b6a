package threads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SaiNageswarS/threads-poster/config"
	"github.com/SaiNageswarS/threads-poster/logger"
	"go.uber.org/zap"
)

var ErrMissingID = errors.New("response did not include an id")

// APIError is a Threads Graph API response with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("threads api error (%d): %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ContainerStatus is the processing state of a media container.
type ContainerStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Label renders the account for humans: "name (@handle)", "@handle" or the
// bare user id.
func (p *Profile) Label(userID string) string {
	if p == nil {
		return userID
	}

	handle := ""
	if p.Username != "" {
		handle = "@" + p.Username
	}

	switch {
	case p.DisplayName != "" && handle != "":
		return fmt.Sprintf("%s (%s)", p.DisplayName, handle)
	case p.DisplayName != "":
		return p.DisplayName
	case handle != "":
		return handle
	default:
		return userID
	}
}

type Client struct {
	baseURL     string
	userID      string
	accessToken string
	httpClient  *http.Client
}

func ProvideClient(cfg *config.PosterConfig) *Client {
	return NewClient(cfg.ThreadsAPIBase, cfg.UserID, cfg.AccessToken, cfg.HTTPTimeout())
}

func NewClient(baseURL, userID, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userID:      userID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CreateImageContainer registers imageURL for posting and returns the
// container id. An empty text posts the image without a caption.
func (c *Client) CreateImageContainer(ctx context.Context, imageURL, text string) (string, error) {
	form := url.Values{
		"media_type":   {"IMAGE"},
		"image_url":    {imageURL},
		"access_token": {c.accessToken},
	}
	if text != "" {
		form.Set("text", text)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.userID+"/threads", form, &resp); err != nil {
		return "", fmt.Errorf("creating media container: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("creating media container: %w", ErrMissingID)
	}

	logger.Debug("Created media container", zap.String("containerId", resp.ID))
	return resp.ID, nil
}

func (c *Client) ContainerStatus(ctx context.Context, containerID string) (*ContainerStatus, error) {
	var status ContainerStatus
	if err := c.get(ctx, containerID, "status,error_message", &status); err != nil {
		return nil, fmt.Errorf("checking container %s: %w", containerID, err)
	}
	return &status, nil
}

// Publish makes the container visible and returns the post id.
func (c *Client) Publish(ctx context.Context, containerID string) (string, error) {
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {c.accessToken},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.userID+"/threads_publish", form, &resp); err != nil {
		return "", fmt.Errorf("publishing container %s: %w", containerID, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("publishing container %s: %w", containerID, ErrMissingID)
	}

	logger.Debug("Published container", zap.String("containerId", containerID), zap.String("postId", resp.ID))
	return resp.ID, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, c.userID, "id,username", &profile); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path, fields string, out any) error {
	query := url.Values{
		"fields":       {fields},
		"access_token": {c.accessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which carries the access token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, urlErr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Type = envelope.Error.Type
			apiErr.Code = envelope.Error.Code
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
