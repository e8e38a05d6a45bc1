// Package nexus is a client for the two Nexus Mods API endpoints the
// installer consumes: the per-mod file listing and the per-file download
// link list.
package nexus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/auth"
	"github.com/glorpus-work/modlist/pkg/errors"
)

// DefaultBaseURL is the public v1 API root.
const DefaultBaseURL = "https://api.nexusmods.com/v1"

// maxResponseSize bounds how much of an API response is read into memory.
const maxResponseSize = 8 << 20

// File is one entry of a mod's file listing.
type File struct {
	FileID   int64  `json:"file_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	FileName string `json:"file_name"`
}

// DownloadLink is one mirror returned for a file, ordered by user preference.
type DownloadLink struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	URI       string `json:"URI"`
}

type filesResponse struct {
	Files *[]File `json:"files"`
}

// Client talks to the Nexus Mods API.
type Client struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
}

// NewClient creates a client for the API rooted at baseURL. An empty baseURL
// selects DefaultBaseURL. timeout bounds each API request.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid provider base URL %q", baseURL)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("provider base URL %q must be absolute: %w", baseURL, errors.ErrInvalidPath)
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   parsed,
		userAgent: "modlist/1.0",
	}, nil
}

// ListFiles returns the file listing of a mod.
func (c *Client) ListFiles(ctx context.Context, game, modID string, cred auth.Authenticator) ([]File, error) {
	u := c.endpoint("games", game, "mods", modID, "files.json")

	var resp filesResponse
	if err := c.get(ctx, "list files", u, cred, &resp); err != nil {
		return nil, err
	}
	if resp.Files == nil {
		return nil, &Error{Kind: errors.ErrMalformedResponse, Op: "list files", URL: u, Status: http.StatusOK, Message: "response has no files list"}
	}
	return *resp.Files, nil
}

// DownloadLinks returns the download links of one file of a mod.
func (c *Client) DownloadLinks(ctx context.Context, game, modID string, fileID int64, cred auth.Authenticator) ([]DownloadLink, error) {
	u := c.endpoint("games", game, "mods", modID, "files", strconv.FormatInt(fileID, 10), "download_link.json")

	var links []DownloadLink
	if err := c.get(ctx, "download link", u, cred, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *Client) endpoint(elems ...string) string {
	escaped := make([]string, len(elems))
	for i, e := range elems {
		escaped[i] = url.PathEscape(e)
	}
	return c.baseURL.JoinPath(escaped...).String()
}

func (c *Client) get(ctx context.Context, op, u string, cred auth.Authenticator, out any) error {
	if cred == nil {
		return errors.ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if err := cred.Apply(req); err != nil {
		return err
	}

	logger.Debug("Provider request", logger.Fields{"op": op, "url": u})
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: errors.ErrNetwork, Op: op, URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if remaining := resp.Header.Get("X-RL-Daily-Remaining"); remaining != "" {
		logger.Debug("Provider rate limit", logger.Fields{"daily_remaining": remaining, "hourly_remaining": resp.Header.Get("X-RL-Hourly-Remaining")})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &Error{Kind: errors.ErrNetwork, Op: op, URL: u, Status: resp.StatusCode, Err: err}
	}

	if err := classify(op, u, resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: errors.ErrMalformedResponse, Op: op, URL: u, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// classify maps a response onto an error kind. The provider reports some
// failures inside a 200 body as {"code": N, "message": "..."}, so the code
// check runs before the status check for everything but auth failures.
func classify(op, u string, status int, body []byte) error {
	code, message, hasCode := providerError(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: errors.ErrAuthRejected, Op: op, URL: u, Status: status, Code: code, Message: message}
	case hasCode:
		return &Error{Kind: errors.ErrProvider, Op: op, URL: u, Status: status, Code: code, Message: message}
	case status == http.StatusNotFound:
		return &Error{Kind: errors.ErrNotFound, Op: op, URL: u, Status: status, Message: message}
	case status != http.StatusOK:
		return &Error{Kind: errors.ErrNetwork, Op: op, URL: u, Status: status, Message: fmt.Sprintf("unexpected status code: %d", status)}
	}
	return nil
}

// providerError extracts a numeric "code" and its "message" from an object body.
func providerError(body []byte) (int, string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, "", false
	}

	var message string
	if raw, ok := fields["message"]; ok {
		_ = json.Unmarshal(raw, &message)
	}

	raw, ok := fields["code"]
	if !ok {
		return 0, message, false
	}
	var code *float64
	if err := json.Unmarshal(raw, &code); err != nil || code == nil {
		return 0, message, false
	}
	return int(*code), message, true
}
