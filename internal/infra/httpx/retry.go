package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

const (
	DefaultMaxRetries   = 3
	DefaultBaseDelay    = 500 * time.Millisecond
	DefaultJitterWindow = 250 * time.Millisecond
)

// RetryPolicy bounds the retry loop. Delay before retry n (0-based) is
// 2^n*BaseDelay plus a random jitter in [0, JitterWindow).
type RetryPolicy struct {
	MaxRetries   int
	BaseDelay    time.Duration
	JitterWindow time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   DefaultMaxRetries,
		BaseDelay:    DefaultBaseDelay,
		JitterWindow: DefaultJitterWindow,
	}
}

// Backoff returns the delay before the retry that follows attempt.
func (p RetryPolicy) Backoff(attempt int, jitter func(max int64) int64) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt > 20 {
		attempt = 20
	}
	delay := p.BaseDelay << attempt
	if p.JitterWindow > 0 && jitter != nil {
		delay += time.Duration(jitter(int64(p.JitterWindow)))
	}
	return delay
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Target     string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("%s request failed: %s", e.Target, e.Status)
	}
	return fmt.Sprintf("%s request failed: %s: %s", e.Target, e.Status, e.Body)
}

func newStatusError(target string, statusCode int, status string, body []byte) error {
	return &StatusError{
		Target:     target,
		StatusCode: statusCode,
		Status:     status,
		Body:       strings.TrimSpace(string(body)),
	}
}

// ThrottledError is returned by Inspect hooks when a 200 response reports
// rate limiting in its body (GraphQL THROTTLED).
type ThrottledError struct {
	Target  string
	Message string
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s throttled: %s", e.Target, e.Message)
}

// RetryError wraps the last error once retries are exhausted.
type RetryError struct {
	Target   string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Target, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying: rate limiting, 5xx
// responses and network level failures. Cancellation never is.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	var throttled *ThrottledError
	if errors.As(err, &throttled) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsRateLimited reports whether err is a remote throttling signal.
func IsRateLimited(err error) bool {
	var throttled *ThrottledError
	if errors.As(err, &throttled) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sleep waits for delay or until ctx is done.
func Sleep(ctx context.Context, delay time.Duration) error {
	return sleepWithContext(ctx, delay)
}
