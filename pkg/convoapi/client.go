// Package convoapi is a typed client for the Convo REST API.
package convoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxBodySize = 1 << 20

// Client calls the Convo API through an *http.Client. Session state lives
// entirely in the http.Client's cookie jar.
type Client struct {
	base *url.URL
	hc   *http.Client
}

// New returns a client for the API rooted at baseURL. A trailing slash is
// added when missing so relative endpoint paths resolve beneath it.
func New(baseURL string, hc *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	base, err := url.Parse(EnsureTrailingSlash(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, ErrInvalidBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: base, hc: hc}, nil
}

func EnsureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// BaseURL returns the root every endpoint is resolved against.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// HTTPClient exposes the underlying client.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and returns the status and the (size-capped) body.
// Only transport failures are errors here.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s: %w", path, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rd)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, data, nil
}

// invoke performs a call whose successful response decodes into T.
func invoke[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*T, error) {
	status, data, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, decodeAPIError(status, data)
	}
	var out T
	if len(data) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}
