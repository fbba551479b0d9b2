// Package gist is a minimal GitHub Gist API client used as the remote
// document store of DailyFocus.
//
// A backup is a private gist holding a single file. Only three calls are
// needed: create a gist, overwrite its file, and read it back.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Defaults.
const (
	DefaultBaseURL  = "https://api.github.com"
	DefaultFilename = "dailyfocus-data.json"
	DefaultTimeout  = 30 * time.Second

	acceptHeader = "application/vnd.github.v3+json"
	maxBodyBytes = 10 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Filename   string
	HTTPClient *http.Client
	UserAgent  string
	Logger     *log.Logger
	Now        func() time.Time
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Filename:  DefaultFilename,
		UserAgent: "dailyfocus",
	}
}

// Client talks to the Gist API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	filename string
	base     *http.Client
	ua       string
	logger   *log.Logger
	now      func() time.Time
}

// New creates a Client. Zero fields of cfg take their defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Filename == "" {
		cfg.Filename = def.Filename
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[gist] ", log.LstdFlags)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		filename: cfg.Filename,
		base:     cfg.HTTPClient,
		ua:       cfg.UserAgent,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Filename returns the name of the data file inside the gist.
func (c *Client) Filename() string { return c.filename }

type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

type gistPayload struct {
	Description string              `json:"description,omitempty"`
	Public      *bool               `json:"public,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID    string               `json:"id"`
	Files map[string]*gistFile `json:"files"`
}

// Create stores content in a new private gist and returns its id.
func (c *Client) Create(ctx context.Context, token string, content []byte) (string, error) {
	private := false
	payload := gistPayload{
		Description: c.description(),
		Public:      &private,
		Files:       map[string]gistFile{c.filename: {Content: string(content)}},
	}

	var resp gistResponse
	if err := c.do(ctx, token, "upload", http.MethodPost, "/gists", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("upload: response carries no gist id")
	}
	c.logger.Printf("Created gist %s (%d bytes)", resp.ID, len(content))
	return resp.ID, nil
}

// Update overwrites the data file of gist id.
func (c *Client) Update(ctx context.Context, token, id string, content []byte) error {
	if id == "" {
		return ErrMissingID
	}
	payload := gistPayload{
		Description: c.description(),
		Files:       map[string]gistFile{c.filename: {Content: string(content)}},
	}
	if err := c.do(ctx, token, "upload", http.MethodPatch, "/gists/"+id, payload, nil); err != nil {
		return err
	}
	c.logger.Printf("Updated gist %s (%d bytes)", id, len(content))
	return nil
}

// Get returns the content of the data file of gist id. An empty token reads
// anonymously, which works for gists the caller can otherwise see.
func (c *Client) Get(ctx context.Context, token, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	var resp gistResponse
	if err := c.do(ctx, token, "download", http.MethodGet, "/gists/"+id, nil, &resp); err != nil {
		return nil, err
	}
	f, ok := resp.Files[c.filename]
	if !ok || f == nil {
		return nil, ErrFileNotFound
	}
	if f.Truncated && f.RawURL != "" {
		return c.raw(ctx, token, f.RawURL)
	}
	return []byte(f.Content), nil
}

func (c *Client) description() string {
	return "DailyFocus 数据备份 - " + c.now().Format("2006/1/2 15:04:05")
}

// httpClient returns a client that adds the bearer token, or the plain base
// client when token is empty.
func (c *Client) httpClient(token string) *http.Client {
	if token == "" {
		return c.base
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   c.base.Transport,
		},
		Timeout:       c.base.Timeout,
		CheckRedirect: c.base.CheckRedirect,
	}
}

func (c *Client) do(ctx context.Context, token, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient(token).Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return httpError(op, res.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, token, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	res, err := c.httpClient(token).Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "download", Err: err}
	}
	defer res.Body.Close()
	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: "download", Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, httpError("download", res.StatusCode, data)
	}
	return data, nil
}

func httpError(op string, status int, body []byte) *HTTPError {
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return &HTTPError{Status: status, Message: apiErr.Message}
	}
	return &HTTPError{Status: status, Message: statusMessage(op, status)}
}
