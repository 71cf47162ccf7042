package apiclient

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Classification tells the retry engine what to do with a failed attempt.
type Classification int

const (
	// Terminal failures end the request immediately
	Terminal Classification = iota
	// Retryable failures are attempted again while budget remains
	Retryable
)

// String returns the string representation of a Classification
func (c Classification) String() string {
	switch c {
	case Retryable:
		return "retryable"
	default:
		return "terminal"
	}
}

// Classify decides whether a failed attempt may be retried. Only HTTP
// error statuses are retryable; transport failures, closed clients and
// validation errors are terminal.
func Classify(err error) Classification {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return Retryable
	}
	return Terminal
}

// IsRetryable reports whether Classify(err) is Retryable
func IsRetryable(err error) bool {
	return Classify(err) == Retryable
}

// attempt is one try of a logical request.
type attempt struct {
	number   int
	response *Response
	err      error
	duration time.Duration
}

func (a attempt) statusCode() int {
	if a.response != nil {
		return a.response.StatusCode
	}
	var statusErr *HTTPStatusError
	if errors.As(a.err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// requestInfo identifies a logical request in events.
type requestInfo struct {
	id     string
	method string
	url    string
}

type attemptFunc func(ctx context.Context, number int) (*Response, error)

// retryer executes a logical request as a sequence of attempts with a
// fixed interval between them.
type retryer struct {
	maxRetries int
	interval   time.Duration
	events     emitter
}

func (r *retryer) maxAttempts() int {
	return r.maxRetries + 1
}

func (r *retryer) run(ctx context.Context, info requestInfo, do attemptFunc) (*Response, error) {
	for n := 1; ; n++ {
		r.report(info, attempt{number: n}, PhaseAttempt, LevelInfo, "Request")

		start := time.Now()
		resp, err := do(ctx, n)
		a := attempt{number: n, response: resp, err: err, duration: time.Since(start)}

		if err == nil {
			resp.Attempts = n
			r.report(info, a, PhaseSuccess, LevelInfo, "Response")
			return resp, nil
		}

		if Classify(err) == Terminal {
			r.report(info, a, PhaseFailure, LevelError, "Request failed")
			return nil, err
		}

		if n >= r.maxAttempts() {
			r.report(info, a, PhaseFailure, LevelError, fmt.Sprintf("Request failed after %d retries", r.maxRetries))
			return nil, err
		}

		r.report(info, a, PhaseRetry, LevelWarning, fmt.Sprintf("Retry %d:%d", n, r.maxRetries))
		if waitErr := r.wait(ctx); waitErr != nil {
			terr := &TransportError{Method: info.method, URL: info.url, Attempt: n, Err: waitErr}
			r.report(info, attempt{number: n, err: terr}, PhaseAbandoned, LevelError, "Request abandoned while waiting to retry")
			return nil, terr
		}
	}
}

// wait sleeps for the retry interval or until ctx is done.
func (r *retryer) wait(ctx context.Context) error {
	if r.interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *retryer) report(info requestInfo, a attempt, phase Phase, level Level, msg string) {
	r.events.emit(Event{
		Level:       level,
		Phase:       phase,
		Message:     msg,
		RequestID:   info.id,
		Method:      info.method,
		URL:         info.url,
		Attempt:     a.number,
		MaxAttempts: r.maxAttempts(),
		StatusCode:  a.statusCode(),
		Duration:    a.duration,
		Err:         a.err,
	})
}
