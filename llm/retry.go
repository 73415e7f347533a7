package llm

import (
	"io"
	"math/rand"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// retryTransport retries transient failures with exponential backoff.
// Requests whose bodies cannot be replayed (multipart uploads, raw octet
// streams) pass through untouched.
type retryTransport struct {
	next       http.RoundTripper
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !replayable(req) {
		return t.next.RoundTrip(req)
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return resp, err
			}
			req.Body = body
		}

		resp, err = t.next.RoundTrip(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= t.maxRetries {
			return resp, err
		}

		delay := t.delay(attempt, resp)
		if resp != nil {
			// Drain so the connection can be reused across attempts.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
		}
		t.logger.Debug("retrying request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}

// delay computes exponential backoff with jitter, honoring a Retry-After
// header (seconds form) when the server provides one.
func (t *retryTransport) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if after := resp.Header.Get("Retry-After"); after != "" {
			if secs, err := strconv.Atoi(after); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	base := t.baseDelay << uint(attempt)
	return base + time.Duration(rand.Int63n(int64(base)/2+1))
}

func replayable(req *http.Request) bool {
	contentType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err == nil {
		switch contentType {
		case "multipart/form-data", "application/octet-stream":
			return false
		}
	}
	return req.Body == nil || req.GetBody != nil
}

func retryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}
