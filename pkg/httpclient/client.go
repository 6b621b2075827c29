// Package httpclient wraps a shared net/http client with JSON helpers and a
// status-driven retry executor. Upstream API clients build on it instead of
// rolling their own transport settings.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	requestTimeout = 10 * time.Second
	maxErrorBody   = 4 * 1024
)

// Client is safe for concurrent use and intended to be shared across all
// upstream integrations so connection pools are reused.
type Client struct {
	http  *http.Client
	retry RetryConfig
}

func New(retry RetryConfig) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: requestTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     15 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		retry: retry,
	}
}

// GetJSON performs a GET with retry and decodes the 2xx response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	_, err := DoWithRetry(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodGet, url, nil, headers, out)
	})
	return err
}

// PostJSON performs a POST with a JSON body and retry, decoding the 2xx
// response body into out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, url string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	_, err = DoWithRetry(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPost, url, payload, headers, out)
	})
	return err
}

func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logrus.Errorf("[HTTP] %s %s failed with status %d", method, url, resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: string(errBody)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A malformed body is not transient; surface it without retries.
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
