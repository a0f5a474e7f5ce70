package http

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"
)

// Stage names a measurable phase of one HTTP exchange.
type Stage string

const (
	// StageDNS is the time spent looking up the DNS address
	StageDNS Stage = "dns"

	// StageConnect is the time spent establishing a TCP connection
	StageConnect Stage = "connect"

	// StageTLS is the time spent performing the TLS handshake (for HTTPS)
	StageTLS Stage = "tls"

	// StageFirstByte is the time from the last completed phase to the first response byte
	StageFirstByte Stage = "first_byte"

	// StageDownload is the time spent reading the response body
	StageDownload Stage = "download"
)

// Timings holds the measured stages of the exchange that produced a Result.
// Stages the transport did not expose (reused connections, custom transports)
// are absent from Phases rather than zero.
type Timings struct {
	Phases map[Stage]time.Duration

	// Total is the wall-clock time of the whole logical call, redirects included
	Total time.Duration
}

// Phase returns the duration of a stage and whether it was measured.
func (t Timings) Phase(s Stage) (time.Duration, bool) {
	d, ok := t.Phases[s]
	return d, ok
}

// stageTimer captures stage timings through net/http/httptrace. Trace callbacks
// may run on transport goroutines, so all state is guarded.
type stageTimer struct {
	mu sync.Mutex

	start        time.Time
	lastPhaseEnd time.Time

	dnsStart     time.Time
	connectStart time.Time
	tlsStart     time.Time

	phases map[Stage]time.Duration
}

func newStageTimer() *stageTimer {
	now := time.Now()
	return &stageTimer{
		start:        now,
		lastPhaseEnd: now,
		phases:       make(map[Stage]time.Duration),
	}
}

// trace attaches the timer to ctx.
func (st *stageTimer) trace(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			st.mu.Lock()
			st.dnsStart = time.Now()
			st.mu.Unlock()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.dnsStart.IsZero() {
				return
			}
			now := time.Now()
			st.phases[StageDNS] = now.Sub(st.dnsStart)
			st.lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			st.mu.Lock()
			if st.connectStart.IsZero() {
				st.connectStart = time.Now()
			}
			st.mu.Unlock()
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.connectStart.IsZero() {
				return
			}
			now := time.Now()
			st.phases[StageConnect] = now.Sub(st.connectStart)
			st.lastPhaseEnd = now
		},
		TLSHandshakeStart: func() {
			st.mu.Lock()
			st.tlsStart = time.Now()
			st.mu.Unlock()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.tlsStart.IsZero() {
				return
			}
			now := time.Now()
			st.phases[StageTLS] = now.Sub(st.tlsStart)
			st.lastPhaseEnd = now
		},
		GotFirstResponseByte: func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			now := time.Now()
			st.phases[StageFirstByte] = now.Sub(st.lastPhaseEnd)
			st.lastPhaseEnd = now
		},
	})
}

// download records the body transfer time.
func (st *stageTimer) download(d time.Duration) {
	st.mu.Lock()
	st.phases[StageDownload] = d
	st.mu.Unlock()
}

// snapshot returns the measured, strictly positive phases.
func (st *stageTimer) snapshot() map[Stage]time.Duration {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make(map[Stage]time.Duration, len(st.phases))
	for stage, d := range st.phases {
		if d > 0 {
			out[stage] = d
		}
	}
	return out
}
