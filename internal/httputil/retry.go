// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the retrieval tiers.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay is the base duration for exponential backoff. The delay
// doubles each attempt: 500 ms, 1 s, 2 s. Tests override this to avoid
// real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxAttempts = 3

// DoWithRetry executes an HTTP request, retrying transport-level
// failures, 429 and 5xx responses with exponential backoff. Responses
// that signal permanent absence (404 and other 4xx) return immediately;
// the distinction between "try again" and "not there" belongs to the
// caller's fallback logic, not here.
//
// When maxAttempts is <= 0 the default (3) is used. Retried response
// bodies are drained and closed before sleeping. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting attempts the last response (or last transport error) is
// returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= maxAttempts {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := RetryBaseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryableStatus reports whether a status code indicates a transient
// condition worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
