package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/stackpkg/pkg/cache"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/httputil"
	"github.com/matzehuels/stackpkg/pkg/observability"
)

// Client provides cached JSON requests and downloads with retry.
// All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
	backoff httputil.Backoff
}

// NewClient creates a Client. A nil backend disables caching.
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:    httputil.NewClient(httputil.DefaultTimeout),
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// Cached retrieves v from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// fetch is retried for errors wrapped with httputil.Retryable.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		data, ok, err := c.cache.Get(ctx, key)
		hit := err == nil && ok && json.Unmarshal(data, v) == nil
		observability.Cache().OnLookup(ctx, key, hit)
		if hit {
			return nil
		}
	}
	if err := c.backoff.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnStore(ctx, key, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	body, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeFormat, err, "decode %s", rawURL)
	}
	return nil
}

// Download copies the body of rawURL into a writer obtained from open,
// retrying transient failures. open is called once per attempt.
func (c *Client) Download(ctx context.Context, rawURL string, open func() (io.WriteCloser, error)) error {
	return c.backoff.Do(ctx, func() error {
		body, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return err
		}
		defer body.Close()

		w, err := open()
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, body); err != nil {
			w.Close()
			return httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
		}
		return w.Close()
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, rawURL)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnResponse(ctx, http.MethodGet, rawURL, 0, time.Since(start), err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
	}
	hooks.OnResponse(ctx, http.MethodGet, rawURL, resp.StatusCode, time.Since(start), nil)

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
