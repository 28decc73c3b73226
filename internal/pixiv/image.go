package pixiv

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ImageClient performs image transfers from the pixiv image host.
// It is safe for concurrent use by the download workers.
type ImageClient struct {
	client *http.Client
}

// NewImageClient creates an image client with the given request timeout,
// normally the same timeout the API client was configured with.
func NewImageClient(timeout time.Duration) *ImageClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &ImageClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Get fetches one image URL. The image host rejects requests without the
// pixiv Referer, so it is always set. A non-2xx status is a transfer
// error; on success the caller owns the response body.
func (c *ImageClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("pixiv: create image request: %w", err)
	}
	req.Header.Set("Referer", Referer)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixiv: fetch image: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("pixiv: fetch image: unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}
