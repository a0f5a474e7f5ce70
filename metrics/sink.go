package metrics

import (
	"time"
)

// NoResponse is the code label recorded when a request ended without any
// HTTP response (timeouts, connection failures).
const NoResponse = -1

// RequestObservation describes one finished logical request.
type RequestObservation struct {
	// Base is the client's base URL
	Base string

	// Method is the HTTP method
	Method string

	// Path is the unexpanded path template, which keeps label cardinality bounded
	Path string

	// Code is the final status code, or NoResponse
	Code int

	// Duration is the wall-clock time of the whole call including redirects
	Duration time.Duration
}

// Sink receives request measurements. Implementations must be safe for
// concurrent use and must never panic into the caller.
type Sink interface {
	// ObserveRequest records the outcome of one logical request.
	ObserveRequest(obs RequestObservation)

	// ObserveStage records the duration of one transport stage (dns, connect, ...).
	ObserveStage(base, stage string, d time.Duration)
}

// Nop is a Sink that drops everything.
type Nop struct{}

// ObserveRequest implements Sink.
func (Nop) ObserveRequest(RequestObservation) {}

// ObserveStage implements Sink.
func (Nop) ObserveStage(string, string, time.Duration) {}

type tee []Sink

// Tee returns a Sink that forwards every observation to all non-nil sinks.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t tee) ObserveRequest(obs RequestObservation) {
	for _, s := range t {
		safely(func() { s.ObserveRequest(obs) })
	}
}

func (t tee) ObserveStage(base, stage string, d time.Duration) {
	for _, s := range t {
		safely(func() { s.ObserveStage(base, stage, d) })
	}
}

// safely runs fn and swallows any panic; a broken sink must not change the
// outcome of the request being measured.
func safely(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
