// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a decorator around an HTTP client that adds rate
// limiting and a retry mechanism for calls to the upstream dashboard API.
//
// Structs:
//   - QuotaAwareHTTPClient: Wraps an *http.Client with a token bucket limiter
//     and bounded retries on transient failures.
//
// Functions:
//   - NewQuotaAwareHTTPClient: A constructor that builds the client from config.
package cloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// QuotaAwareHTTPClient is a decorator around an *http.Client. Every request
// waits on the limiter before it is sent, and transport errors or 5xx
// responses are retried with a linear backoff until MaxRetries is exhausted.
type QuotaAwareHTTPClient struct {
	Client     *http.Client
	RateLimit  *rate.Limiter // nil disables limiting.
	MaxRetries int
	Backoff    time.Duration
}

// NewQuotaAwareHTTPClient builds a client for the upstream API. The transport
// is instrumented with otelhttp so each upstream call becomes a client span.
func NewQuotaAwareHTTPClient(cfg Upstream) *QuotaAwareHTTPClient {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond)
	}
	return &QuotaAwareHTTPClient{
		Client: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		RateLimit:  limiter,
		MaxRetries: cfg.MaxRetries,
		Backoff:    time.Duration(cfg.BackoffMillis) * time.Millisecond,
	}
}

// Do sends req, honouring the rate limit and retry policy. The request must
// not carry a body, since it may be sent more than once. The caller owns the
// returned response body. Once retries are exhausted, a 5xx response is
// returned like any other status; only transport failures become errors.
func (q *QuotaAwareHTTPClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error
	for attempt := 0; attempt <= q.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, q.Backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
		if q.RateLimit != nil {
			if err := q.RateLimit.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := q.Client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError && attempt < q.MaxRetries {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("upstream returned %s", resp.Status)
			continue
		}
		// The last 5xx is handed back as is, so callers classify it by status.
		return resp, nil
	}
	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", req.URL, q.MaxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
