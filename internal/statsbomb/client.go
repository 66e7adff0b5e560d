package statsbomb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client reads open data over HTTP from a raw-content mirror of the
// open-data repository.
type Client struct {
	reader
	baseURL string
	http    *http.Client
}

// NewClient returns a client rooted at baseURL, e.g.
// https://raw.githubusercontent.com/statsbomb/open-data/master/data.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	c.reader = reader{o: c}
	return c
}

// open performs a GET against baseURL/path. The caller closes the body.
func (c *Client) open(ctx context.Context, path string) (io.ReadCloser, error) {
	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}

	if strings.HasSuffix(path, ".zst") || resp.Header.Get("Content-Encoding") == "zstd" {
		rc, err := newZstdReadCloser(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		return rc, nil
	}
	return resp.Body, nil
}
