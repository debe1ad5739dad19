// Package http is the outbound client for the third-party endpoints that have
// no Go SDK: the FreeImage.host upload API and the Slack order webhook.
//
//	resp, err := http.Post(endpoint).
//	    WithContext(ctx).
//	    Form(url.Values{"key": {apiKey}, "source": {encoded}}).
//	    Retry(3, time.Second).
//	    Send()
//
//	var out uploadResult
//	err = resp.JSON(&out)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// DefaultClient sends every outbound request.
var DefaultClient = &gohttp.Client{
	Transport: &gohttp.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// ── Request ──────────────────────────────────────────────────────────────────

// Request is a fluent POST builder.
type Request struct {
	url       string
	ctype     string
	payload   []byte
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	ctx       context.Context
	err       error
}

// Post starts a POST to url. One attempt, 30s timeout.
func Post(url string) *Request {
	return &Request{
		url:       url,
		timeout:   30 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

// Body sends v as JSON.
func (r *Request) Body(v any) *Request {
	b, err := json.Marshal(v)
	if err != nil {
		r.err = fmt.Errorf("http: marshal body: %w", err)
		return r
	}
	r.payload, r.ctype = b, "application/json"
	return r
}

// Form sends values URL-encoded.
func (r *Request) Form(values url.Values) *Request {
	r.payload, r.ctype = []byte(values.Encode()), "application/x-www-form-urlencoded"
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry makes up to n attempts on transport failure, waiting wait before the
// second and doubling after that. Non-2xx responses are not retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.attempts, r.retryWait = n, wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ── Send ─────────────────────────────────────────────────────────────────────

func (r *Request) Send() (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}

	var lastErr error
	wait := r.retryWait
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == r.attempts {
			break
		}

		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"host", host(r.url), "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-r.ctx.Done():
			return nil, fmt.Errorf("http: POST %s: %w", host(r.url), r.ctx.Err())
		}
		wait *= 2
	}
	return nil, fmt.Errorf("http: POST %s failed after %d attempt(s): %w", host(r.url), r.attempts, lastErr)
}

func (r *Request) do() (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, gohttp.MethodPost, r.url, bytes.NewReader(r.payload))
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Raw: raw}, nil
}

// host keeps API keys and webhook secrets in the path out of logs.
func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Scheme + "://" + u.Host
}

// ── Response ─────────────────────────────────────────────────────────────────

type Response struct {
	StatusCode int
	Raw        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Raw))
}

// Throw turns a non-2xx response into an error.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: status %d: %s", r.StatusCode, r.Text())
	}
	return nil
}
