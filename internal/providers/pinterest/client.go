package pinterest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pawshearts/internal/domain"
	"pawshearts/internal/infra"
)

var (
	// ErrMissingAccessToken indicates that the client was configured without credentials.
	ErrMissingAccessToken = errors.New("pinterest: access token is required")
	// ErrMissingBoard indicates that no board id was configured for pin creation.
	ErrMissingBoard = errors.New("pinterest: board id is required")
)

// Options configures the Pinterest v5 client.
type Options struct {
	AccessToken    string
	BoardID        string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Pinterest v5 REST API.
type Client struct {
	accessToken string
	boardID     string
	baseURL     string
	httpClient  *http.Client
	logger      *infra.Logger
}

// PinRequest captures the inputs for a single pin.
type PinRequest struct {
	ImageURL    string
	Description string
	Link        string
	Title       string
}

// Pin is the normalized result of a successful create call.
type Pin struct {
	ID  string
	URL string
}

type mediaSource struct {
	SourceType string `json:"source_type"`
	URL        string `json:"url"`
}

type createPinRequest struct {
	BoardID     string      `json:"board_id"`
	MediaSource mediaSource `json:"media_source"`
	Description string      `json:"description,omitempty"`
	Link        string      `json:"link,omitempty"`
	Title       string      `json:"title,omitempty"`
}

type createPinResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pinterest: status %d", e.Status)
	}
	return fmt.Sprintf("pinterest: status %d: %s", e.Status, e.Message)
}

// NewClient constructs a client with defaults for the HTTP client, base URL and logger.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.pinterest.com"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		accessToken: strings.TrimSpace(opts.AccessToken),
		boardID:     strings.TrimSpace(opts.BoardID),
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.accessToken != "" && c.boardID != ""
}

// PinURL returns the public URL of a pin id.
func PinURL(id string) string {
	return "https://www.pinterest.com/pin/" + id + "/"
}

// CreatePin posts one pin with an image_url media source to the configured board.
func (c *Client) CreatePin(ctx context.Context, req PinRequest) (*Pin, error) {
	if c.accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if c.boardID == "" {
		return nil, ErrMissingBoard
	}
	image := strings.TrimSpace(req.ImageURL)
	if image == "" {
		return nil, errors.New("pinterest: image url is required")
	}

	payload := createPinRequest{
		BoardID:     c.boardID,
		MediaSource: mediaSource{SourceType: "image_url", URL: image},
		Description: req.Description,
		Link:        strings.TrimSpace(req.Link),
		Title:       truncate(strings.TrimSpace(req.Title), 100),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pinterest: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v5/pins", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pinterest: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pinterest: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("pinterest: read response: %w", err)
	}
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("pinterest: create pin")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Code = er.Code
			apiErr.Message = er.Message
		}
		return nil, apiErr
	}

	var out createPinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinterest: decode response: %w", err)
	}
	if out.ID == "" {
		return nil, errors.New("pinterest: response missing pin id")
	}
	return &Pin{ID: out.ID, URL: PinURL(out.ID)}, nil
}

// Publish satisfies the pin worker's publisher contract.
func (c *Client) Publish(ctx context.Context, pin domain.ScheduledPin) (string, string, error) {
	created, err := c.CreatePin(ctx, PinRequest{
		ImageURL:    pin.Image,
		Description: pin.Caption,
		Link:        pin.Link,
		Title:       pin.ProductTitle,
	})
	if err != nil {
		return "", "", err
	}
	return created.ID, created.URL, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
