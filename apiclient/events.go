package apiclient

import (
	"time"

	"github.com/rs/zerolog"
)

// Level is the severity of an Event
type Level string

const (
	// LevelInfo marks attempts and successful responses
	LevelInfo Level = "info"
	// LevelWarning marks retry decisions
	LevelWarning Level = "warning"
	// LevelError marks terminal failures
	LevelError Level = "error"
)

// Phase says where in the retry sequence an Event was emitted
type Phase int

const (
	// PhaseAttempt is emitted before every attempt
	PhaseAttempt Phase = iota
	// PhaseSuccess ends a request with a response
	PhaseSuccess
	// PhaseRetry follows a failed attempt that will be retried
	PhaseRetry
	// PhaseFailure ends a request with the error of its last attempt
	PhaseFailure
	// PhaseAbandoned ends a request whose context finished while waiting
	// for the next attempt
	PhaseAbandoned
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseAttempt:
		return "attempt"
	case PhaseSuccess:
		return "success"
	case PhaseRetry:
		return "retry"
	case PhaseFailure:
		return "failure"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Event is a structured observability record emitted during request
// execution.
type Event struct {
	Level       Level
	Phase       Phase
	Message     string
	RequestID   string
	Method      string
	URL         string
	Attempt     int
	MaxAttempts int
	StatusCode  int
	Duration    time.Duration
	Err         error
}

// EventSink receives events. Emit must not block for long; it runs on the
// request's goroutine.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(Event)

// Emit calls f(e)
func (f EventSinkFunc) Emit(e Event) { f(e) }

type nopSink struct{}

func (nopSink) Emit(Event) {}

type multiSink []EventSink

func (m multiSink) Emit(e Event) {
	for _, s := range m {
		safeEmit(s, e)
	}
}

// MultiSink fans every event out to each non-nil sink in order
func MultiSink(sinks ...EventSink) EventSink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nopSink{}
	case 1:
		return out[0]
	}
	return out
}

// LogSink writes events to a zerolog logger
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging through logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements EventSink
func (s *LogSink) Emit(e Event) {
	var ev *zerolog.Event
	switch e.Level {
	case LevelWarning:
		ev = s.logger.Warn()
	case LevelError:
		ev = s.logger.Error()
	default:
		ev = s.logger.Info()
	}

	ev = ev.Str("request_id", e.RequestID).
		Str("phase", e.Phase.String()).
		Str("method", e.Method).
		Str("url", e.URL).
		Int("attempt", e.Attempt).
		Int("max_attempts", e.MaxAttempts)
	if e.StatusCode != 0 {
		ev = ev.Int("status", e.StatusCode)
	}
	if e.Duration > 0 {
		ev = ev.Dur("duration", e.Duration)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg(e.Message)
}

// emitter guards the request path against sink failures.
type emitter struct {
	sink EventSink
}

func (em emitter) emit(e Event) {
	safeEmit(em.sink, e)
}

// safeEmit delivers e, swallowing any panic raised by the sink.
func safeEmit(s EventSink, e Event) {
	defer func() {
		_ = recover()
	}()
	s.Emit(e)
}
