// Package httpx is the single outbound HTTP path: every remote call takes a
// token from a shared limiter and is retried on transient failures.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Limiter hands out permits. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Attempt describes one try of a request.
type Attempt struct {
	Target    string
	Method    string
	URL       string
	Number    int
	Status    int
	Elapsed   time.Duration
	Err       error
	Transient bool
	Final     bool
}

// AttemptObserver is told about every attempt, successful or not.
type AttemptObserver func(Attempt)

// Request is replayable: the body is kept as bytes so each attempt sends a
// fresh reader.
type Request struct {
	Target string
	Method string
	URL    string
	Header http.Header
	Body   []byte
	// Inspect may turn a 2xx response into an error, e.g. a throttled
	// GraphQL payload. Returning a ThrottledError makes it retryable.
	Inspect func(*Response) error
}

type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

type Client struct {
	httpClient *http.Client
	limiter    Limiter
	policy     RetryPolicy
	observer   AttemptObserver
	jitter     func(max int64) int64
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithObserver(observer AttemptObserver) Option {
	return func(c *Client) { c.observer = observer }
}

func WithPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.policy = policy }
}

func WithJitter(jitter func(max int64) int64) Option {
	return func(c *Client) { c.jitter = jitter }
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewHTTPClient builds the transport shared by every adapter.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// NewClient wires the limiter into a retrying client. The limiter must be
// shared by every Client talking to the same remote quota.
func NewClient(httpClient *http.Client, limiter Limiter, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(defaultTimeout)
	}
	c := &Client{
		httpClient: httpClient,
		limiter:    limiter,
		policy:     DefaultRetryPolicy(),
		jitter:     rand.Int63n,
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.MaxRetries < 0 {
		c.policy.MaxRetries = 0
	}
	return c
}

// Do sends req, retrying transient failures up to the policy limit. Terminal
// failures are returned on the first occurrence.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, errors.New("httpx client is nil")
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Target == "" {
		req.Target = req.Method + " " + req.URL
	}

	for attempt := 0; ; attempt++ {
		started := time.Now()
		resp, err := c.once(ctx, req)
		transient := err != nil && ctx.Err() == nil && IsTransient(err)
		final := err == nil || !transient || attempt >= c.policy.MaxRetries
		c.observe(Attempt{
			Target:    req.Target,
			Method:    req.Method,
			URL:       req.URL,
			Number:    attempt + 1,
			Status:    responseStatus(resp, err),
			Elapsed:   time.Since(started),
			Err:       err,
			Transient: transient,
			Final:     final,
		})
		if err == nil {
			return resp, nil
		}
		if !transient {
			return nil, err
		}
		if attempt >= c.policy.MaxRetries {
			return nil, &RetryError{Target: req.Target, Attempts: attempt + 1, Err: err}
		}
		if err := c.sleep(ctx, c.policy.Backoff(attempt, c.jitter)); err != nil {
			return nil, err
		}
	}
}

func (c *Client) once(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header.Clone(),
		Body:       respBody,
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, newStatusError(req.Target, resp.StatusCode, resp.Status, respBody)
	}
	if req.Inspect != nil {
		if err := req.Inspect(resp); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (c *Client) observe(attempt Attempt) {
	if c.observer != nil {
		c.observer(attempt)
	}
}

func responseStatus(resp *Response, err error) int {
	if resp != nil {
		return resp.StatusCode
	}
	return StatusCode(err)
}
