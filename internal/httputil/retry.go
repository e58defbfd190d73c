// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// DoWithRetry executes an HTTP request and retries transport errors,
// HTTP 429, and HTTP 5xx with a fixed delay between attempts. Request
// bodies are rewound through req.GetBody before each retry, so bodies
// built from in-memory readers survive; a streaming body without
// GetBody is sent once and retried empty.
//
// When maxRetries is 0 the default (3) is used; when delay is 0 the
// default (1 s) is used. Before each retry the response body, if any, is
// drained and closed. If the context is cancelled during a wait the
// function returns ctx.Err(). After exhausting retries the last response
// is returned as-is so the caller can inspect the status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, delay time.Duration) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	for attempt := 0; ; attempt++ {
		clone := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			clone.Body = body
		}
		resp, err := client.Do(clone)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= maxRetries {
			// Exhausted retries: surface the last outcome as-is.
			return resp, err
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryableStatus reports whether the status indicates a transient
// upstream condition worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
