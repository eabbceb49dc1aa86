// Package capture talks to the screenshot render service. A browser session
// is an expensive remote resource: acquire one per batch, capture any number
// of profiles through it, then release it.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Client acquires capture sessions from the render service.
type Client interface {
	AcquireSession(ctx context.Context) (Session, error)
}

// Session is a live browser session on the render service. Close releases it;
// a session must not be used after Close.
type Session interface {
	// Capture screenshots the given profile URL and returns the path of the
	// PNG written to the capture directory.
	Capture(ctx context.Context, profileURL, leadID, platform string) (string, error)
	Close() error
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.hc = hc
	}
}

// WithDir sets the directory screenshots are written to.
func WithDir(dir string) Option {
	return func(c *httpClient) {
		c.dir = dir
	}
}

type httpClient struct {
	baseURL string
	dir     string
	hc      *http.Client
}

// NewClient creates a capture client for the render service at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		dir:     "screenshots",
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) AcquireSession(ctx context.Context) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", nil)
	if err != nil {
		return nil, eris.Wrap(err, "capture: build session request")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "capture: acquire session")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, eris.Errorf("capture: acquire session returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "capture: decode session response")
	}
	if body.SessionID == "" {
		return nil, eris.New("capture: empty session id")
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "capture: create dir %s", c.dir)
	}
	return &httpSession{client: c, id: body.SessionID}, nil
}

type httpSession struct {
	client *httpClient
	id     string
}

func (s *httpSession) Capture(ctx context.Context, profileURL, leadID, platform string) (string, error) {
	payload, err := json.Marshal(map[string]string{"url": profileURL})
	if err != nil {
		return "", eris.Wrap(err, "capture: marshal request")
	}

	endpoint := fmt.Sprintf("%s/sessions/%s/capture", s.client.baseURL, s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "capture: build capture request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.hc.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "capture: capture %s", profileURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("capture: capture %s returned HTTP %d", profileURL, resp.StatusCode)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "capture: read image")
	}
	if len(png) == 0 {
		return "", eris.Errorf("capture: empty image for %s", profileURL)
	}

	name := fmt.Sprintf("%s_lead_%s_%s.png", platform, leadID, uuid.New().String())
	path := filepath.Join(s.client.dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", eris.Wrapf(err, "capture: write %s", path)
	}
	return path, nil
}

func (s *httpSession) Close() error {
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/sessions/%s", s.client.baseURL, s.id), nil)
	if err != nil {
		return eris.Wrap(err, "capture: build close request")
	}

	resp, err := s.client.hc.Do(req)
	if err != nil {
		return eris.Wrap(err, "capture: close session")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return eris.Errorf("capture: close session returned HTTP %d", resp.StatusCode)
	}
	return nil
}
