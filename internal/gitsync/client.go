// Package gitsync imports and exports the problem bank through the GitHub
// contents API.
package gitsync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("file not found in repository")
	ErrNoToken    = errors.New("github token is not configured")
	ErrUpstream   = errors.New("github request failed")
	ErrNotEnabled = errors.New("github sync is not configured")
)

type ClientConfig struct {
	Token      string
	Owner      string
	Repo       string
	Branch     string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	token   string
	owner   string
	repo    string
	branch  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	branch := strings.TrimSpace(cfg.Branch)
	if branch == "" {
		branch = "main"
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		token:   strings.TrimSpace(cfg.Token),
		owner:   strings.TrimSpace(cfg.Owner),
		repo:    strings.TrimSpace(cfg.Repo),
		branch:  branch,
		baseURL: baseURL,
		client:  client,
	}
}

// Enabled reports whether the client has a repository to talk to. Reads
// of public repositories work without a token; writes do not.
func (c *Client) Enabled() bool {
	return c.owner != "" && c.repo != ""
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Read fetches a file from the repository and decodes it.
func (c *Client) Read(ctx context.Context, path string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotEnabled
	}
	body, status, err := c.do(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+c.branch, nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", ErrNotFound
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, status)
	}

	var out contentsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// The API wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(out.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return string(decoded), nil
}

// Write creates or updates a file. An existing file's sha is looked up
// first, as the contents API requires it for updates.
func (c *Client) Write(ctx context.Context, path, content, message string) error {
	if !c.Enabled() {
		return ErrNotEnabled
	}
	if c.token == "" {
		return ErrNoToken
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  c.branch,
	}
	if sha, err := c.currentSHA(ctx, path); err != nil {
		return err
	} else if sha != "" {
		payload["sha"] = sha
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, status, err := c.do(ctx, http.MethodPut, c.contentsURL(path), raw)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, status, truncate(body, 200))
	}
	return nil
}

func (c *Client) currentSHA(ctx context.Context, path string) (string, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+c.branch, nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", nil
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, status)
	}
	var out contentsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out.SHA, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, strings.TrimPrefix(path, "/"))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
