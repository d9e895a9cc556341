// Package objectstore uploads hotel images to an HTTP object store
// (Supabase Storage compatible: PUT <base>/<key> with a bearer key) and
// returns their public URL.
package objectstore

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
)

const service = "objectstore"

// ErrRejected is returned for 4xx answers; those are never retried and do not trip the breaker.
var ErrRejected = errors.New("objectstore: upload rejected")

type Client struct {
	base        string
	publicBase  string
	key         string
	hc          *http.Client
	rl          *rate.Limiter
	cb          *gobreaker.CircuitBreaker
	maxAttempts int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithMaxAttempts bounds the tries per upload, first attempt included.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func New(base, publicBase, key string, rps int, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("object store URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if publicBase == "" {
		publicBase = base
	}
	c := &Client{
		base:        strings.TrimRight(base, "/"),
		publicBase:  strings.TrimRight(publicBase, "/"),
		key:         key,
		hc:          &http.Client{Timeout: 20 * time.Second},
		rl:          rate.NewLimiter(rate.Limit(rps), rps),
		maxAttempts: 4,
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    service,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Put uploads body under key and returns the object's public URL.
func (c *Client) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.put(ctx, key, contentType, body)
	})
	if err != nil {
		return "", err
	}
	return c.publicBase + "/" + key, nil
}

// put performs a PUT with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) put(ctx context.Context, key, contentType string, body []byte) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	url := c.base + "/" + key
	last := c.maxAttempts - 1

	var lastErr error
	for i := 0; i < c.maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("Authorization", "Bearer "+c.key)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")
		req.Header.Set("User-Agent", "hotel-booking/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, "put", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < last && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, "put", resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < last && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
