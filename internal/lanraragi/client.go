package lanraragi

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cover-dedup/internal/logging"
)

const (
	defaultTimeout = 30 * time.Second

	userAgent = "cover-dedup/1.0"
)

// Client talks to a LANraragi server's JSON API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New creates a client for the server at baseURL. The API key may be
// empty for servers with open access; when set it is sent on every
// request as the server expects it, base64-encoded in a Bearer header.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search fetches one page of the archive index starting at offset.
func (c *Client) Search(ctx context.Context, offset int) (*SearchPage, error) {
	query := url.Values{}
	query.Set("start", strconv.Itoa(offset))

	body, err := c.doRequest(ctx, "search", "/api/search", query)
	if err != nil {
		return nil, err
	}

	page, err := parseSearchPage(body)
	if err != nil {
		return nil, wrapError("search", "", err)
	}
	return page, nil
}

// Thumbnail fetches the cover thumbnail for an archive. The server
// either returns the image bytes directly or accepts the request and
// hands back a background job id; callers poll JobStatus and re-fetch
// once the job finishes.
func (c *Client) Thumbnail(ctx context.Context, arcid string, noFallback bool) (*ThumbnailResult, error) {
	query := url.Values{}
	if noFallback {
		query.Set("no_fallback", "1")
	}

	req, err := c.newRequest(ctx, "/api/archives/"+url.PathEscape(arcid)+"/thumbnail", query)
	if err != nil {
		return nil, wrapError("thumbnail", arcid, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError("thumbnail", arcid, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError("thumbnail", arcid, fmt.Errorf("read response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &ThumbnailResult{Data: body}, nil
	case http.StatusAccepted:
		jobID, err := parseJobID(body)
		if err != nil {
			return nil, wrapError("thumbnail", arcid, err)
		}
		logging.Debug("Thumbnail for %s deferred to job %s", arcid, jobID)
		return &ThumbnailResult{JobID: jobID}, nil
	default:
		return nil, wrapError("thumbnail", arcid, statusToError(resp.StatusCode, body))
	}
}

// JobStatus returns the state of a background thumbnail job, one of
// the server's Minion states ("inactive", "active", "finished",
// "failed").
func (c *Client) JobStatus(ctx context.Context, jobID string) (string, error) {
	body, err := c.doRequest(ctx, "jobStatus", "/api/minion/"+url.PathEscape(jobID), nil)
	if err != nil {
		return "", err
	}

	state, err := parseJobState(body)
	if err != nil {
		return "", wrapError("jobStatus", jobID, err)
	}
	return state, nil
}

// doRequest executes a GET and returns the body for 200 responses.
func (c *Client) doRequest(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return nil, wrapError(op, "", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(op, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(op, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, wrapError(op, "", statusToError(resp.StatusCode, body))
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+base64.StdEncoding.EncodeToString([]byte(c.apiKey)))
	}
	return req, nil
}

func statusToError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{StatusCode: statusCode, Body: truncateBody(body)}
	}
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
