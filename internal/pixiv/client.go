package pixiv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Common errors.
var (
	ErrAuthFailed   = errors.New("pixiv: authentication failed")
	ErrNotFound     = errors.New("pixiv: resource not found")
	ErrUnauthorized = errors.New("pixiv: unauthorized")
	ErrServerError  = errors.New("pixiv: server error")
)

const (
	defaultAPIBase  = "https://public-api.secure.pixiv.net/v1"
	defaultAuthURL  = "https://oauth.secure.pixiv.net/auth/token"
	oauthClientID   = "bYGKuGVw91e0NMfPGp44euvGt59s"
	oauthClientKey  = "HP3RmkgAmEGro0gn1x9ioawQE8WMfvLXDz3ZqxpK"
	apiUserAgent    = "PixivIOSApp/6.4.0"
	imageSizes      = "px_128x128,px_480mw,small,medium,large"
	profileImgSizes = "px_170x170,px_50x50"
)

// Referer is required by the image host on every image request.
const Referer = "http://www.pixiv.net/"

// Options configures the API client.
type Options struct {
	// Username and Password authenticate via the OAuth password grant.
	Username string
	Password string

	// AccessToken skips login when set.
	AccessToken string

	// Timeout for individual requests.
	// Default: 10s
	Timeout time.Duration

	// RetryAttempts is the maximum number of retries on connection
	// failure or server error.
	// Default: 3
	RetryAttempts int

	// APIBase and AuthURL override the endpoints, for tests.
	APIBase string
	AuthURL string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
	}
}

// Client talks to the pixiv public API.
type Client struct {
	client *http.Client
	opts   Options

	mu    sync.Mutex
	token string
}

// NewClient creates an API client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.APIBase == "" {
		opts.APIBase = defaultAPIBase
	}
	if opts.AuthURL == "" {
		opts.AuthURL = defaultAuthURL
	}

	return &Client{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		token:  opts.AccessToken,
	}
}

// Timeout reports the configured request timeout. The download executor
// uses the same value for image transfers.
func (c *Client) Timeout() time.Duration {
	return c.opts.Timeout
}

// Login performs the OAuth password grant and caches the bearer token.
// It is a no-op when a token is already held.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	if c.token != "" {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if c.opts.Username == "" || c.opts.Password == "" {
		return fmt.Errorf("%w: no credentials configured", ErrAuthFailed)
	}

	form := url.Values{
		"username":      {c.opts.Username},
		"password":      {c.opts.Password},
		"grant_type":    {"password"},
		"client_id":     {oauthClientID},
		"client_secret": {oauthClientKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.AuthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("pixiv: create login request: %w", err)
	}
	req.Header.Set("Referer", Referer)
	req.Header.Set("User-Agent", apiUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pixiv: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var body struct {
		Response struct {
			AccessToken string `json:"access_token"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("pixiv: decode login response: %w", err)
	}
	if body.Response.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}

	c.mu.Lock()
	c.token = body.Response.AccessToken
	c.mu.Unlock()
	return nil
}

// ListUserIllustrations fetches one page of a user's works, newest first.
// Pages start at 1.
func (c *Client) ListUserIllustrations(ctx context.Context, userID string, page, perPage int) ([]*Illustration, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 100
	}

	params := url.Values{
		"page":                 {strconv.Itoa(page)},
		"per_page":             {strconv.Itoa(perPage)},
		"include_stats":        {"true"},
		"include_sanity_level": {"true"},
		"image_sizes":          {imageSizes},
		"profile_image_sizes":  {profileImgSizes},
	}

	raw, err := c.get(ctx, fmt.Sprintf("%s/users/%s/works.json", c.opts.APIBase, url.PathEscape(userID)), params)
	if err != nil {
		return nil, err
	}

	var works []workRecord
	if err := json.Unmarshal(raw, &works); err != nil {
		return nil, fmt.Errorf("pixiv: decode user works: %w", err)
	}

	illusts := make([]*Illustration, 0, len(works))
	for _, w := range works {
		illusts = append(illusts, w.toIllustration(""))
	}
	return illusts, nil
}

// ListRankingIllustrations fetches the ranking for a date and mode. An
// empty date means today's ranking. Rank is carried on each illustration.
func (c *Client) ListRankingIllustrations(ctx context.Context, date string, perPage int, mode string) ([]*Illustration, error) {
	if perPage <= 0 {
		perPage = 100
	}
	if mode == "" {
		mode = "daily"
	}

	params := url.Values{
		"mode":                 {mode},
		"page":                 {"1"},
		"per_page":             {strconv.Itoa(perPage)},
		"include_stats":        {"true"},
		"include_sanity_level": {"true"},
		"image_sizes":          {imageSizes},
		"profile_image_sizes":  {profileImgSizes},
	}
	if date != "" {
		params.Set("date", date)
	}

	raw, err := c.get(ctx, c.opts.APIBase+"/ranking/all", params)
	if err != nil {
		return nil, err
	}

	var pages []rankingPage
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, fmt.Errorf("pixiv: decode ranking: %w", err)
	}

	var illusts []*Illustration
	for _, page := range pages {
		for _, r := range page.Works {
			illusts = append(illusts, r.Work.toIllustration(strconv.Itoa(r.Rank)))
		}
	}
	return illusts, nil
}

// get performs an authenticated API GET with retry on connection failure
// and server error, and unwraps the response envelope.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("pixiv: create request: %w", err)
		}
		req.Header.Set("Referer", Referer)
		req.Header.Set("User-Agent", apiUserAgent)

		c.mu.Lock()
		token := c.token
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %d %s", ErrServerError, resp.StatusCode, resp.Status)
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("pixiv: decode response: %w", err)
		}
		if env.Status != "success" {
			return nil, fmt.Errorf("pixiv: request failed: status %q", env.Status)
		}
		return env.Response, nil
	}

	return nil, fmt.Errorf("pixiv: request failed after %d attempts: %w", c.opts.RetryAttempts+1, lastErr)
}

// checkStatusCode returns an appropriate error for non-success statuses.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("pixiv: unexpected status code: %d", code)
	}
}
