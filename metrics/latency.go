package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range: 1 microsecond to 1 hour, 3 significant figures
	histogramMin     = 1
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// LatencySummary is a point-in-time view of one latency series.
type LatencySummary struct {
	Key   string
	Count int64
	Min   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration

	// Codes counts outcomes by status code; only set for request series
	Codes map[int]int64
}

type series struct {
	hist  *hdrhistogram.Histogram
	codes map[int]int64
}

// LatencyTracker is an in-process Sink that keeps HDR histograms per
// "METHOD path" and per stage, for quick percentile reporting without a
// Prometheus server.
//
// LatencyTracker is safe for concurrent use.
type LatencyTracker struct {
	mu       sync.Mutex
	requests map[string]*series
	stages   map[string]*series
}

// NewLatencyTracker creates an empty tracker.
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{
		requests: make(map[string]*series),
		stages:   make(map[string]*series),
	}
}

// ObserveRequest implements Sink.
func (t *LatencyTracker) ObserveRequest(obs RequestObservation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := getSeries(t.requests, obs.Method+" "+obs.Path)
	record(s.hist, obs.Duration)
	if s.codes == nil {
		s.codes = make(map[int]int64)
	}
	s.codes[obs.Code]++
}

// ObserveStage implements Sink.
func (t *LatencyTracker) ObserveStage(_ string, stage string, d time.Duration) {
	if d <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record(getSeries(t.stages, stage).hist, d)
}

// Requests returns summaries for every request series, sorted by key.
func (t *LatencyTracker) Requests() []LatencySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return summarize(t.requests)
}

// Stages returns summaries for every stage series, sorted by stage name.
func (t *LatencyTracker) Stages() []LatencySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return summarize(t.stages)
}

// Reset drops all recorded data.
func (t *LatencyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = make(map[string]*series)
	t.stages = make(map[string]*series)
}

func getSeries(m map[string]*series, key string) *series {
	s, ok := m[key]
	if !ok {
		s = &series{hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
		m[key] = s
	}
	return s
}

func record(h *hdrhistogram.Histogram, d time.Duration) {
	us := d.Microseconds()
	if us < histogramMin {
		us = histogramMin
	}
	if us > histogramMax {
		us = histogramMax
	}
	// values are clamped into range, so RecordValue cannot fail
	_ = h.RecordValue(us)
}

func summarize(m map[string]*series) []LatencySummary {
	out := make([]LatencySummary, 0, len(m))
	for key, s := range m {
		h := s.hist
		sum := LatencySummary{
			Key:   key,
			Count: h.TotalCount(),
			Min:   micros(h.Min()),
			Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
			P50:   micros(h.ValueAtQuantile(50)),
			P95:   micros(h.ValueAtQuantile(95)),
			P99:   micros(h.ValueAtQuantile(99)),
			Max:   micros(h.Max()),
		}
		if s.codes != nil {
			sum.Codes = make(map[int]int64, len(s.codes))
			for code, n := range s.codes {
				sum.Codes[code] = n
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
