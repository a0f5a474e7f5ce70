package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyTracker_Percentiles(t *testing.T) {
	tracker := NewLatencyTracker()

	for i := 1; i <= 100; i++ {
		tracker.ObserveRequest(RequestObservation{
			Method:   "GET",
			Path:     "/users/{id}",
			Code:     200,
			Duration: time.Duration(i) * time.Millisecond,
		})
	}
	tracker.ObserveRequest(RequestObservation{Method: "GET", Path: "/users/{id}", Code: 404, Duration: time.Millisecond})

	summaries := tracker.Requests()
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "GET /users/{id}", s.Key)
	assert.Equal(t, int64(101), s.Count)
	assert.Equal(t, int64(100), s.Codes[200])
	assert.Equal(t, int64(1), s.Codes[404])
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(time.Millisecond))
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(10*time.Microsecond))
}

func TestLatencyTracker_StagesSortedAndZeroIgnored(t *testing.T) {
	tracker := NewLatencyTracker()

	tracker.ObserveStage("base", "first_byte", 3*time.Millisecond)
	tracker.ObserveStage("base", "dns", time.Millisecond)
	tracker.ObserveStage("base", "tls", 0)

	stages := tracker.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "dns", stages[0].Key)
	assert.Equal(t, "first_byte", stages[1].Key)
	assert.Nil(t, stages[0].Codes)
}

func TestLatencyTracker_ClampsOutOfRange(t *testing.T) {
	tracker := NewLatencyTracker()

	tracker.ObserveRequest(RequestObservation{Method: "GET", Path: "/", Duration: 0})
	tracker.ObserveRequest(RequestObservation{Method: "GET", Path: "/", Duration: 2 * time.Hour})

	s := tracker.Requests()[0]
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, time.Microsecond, s.Min)
}

func TestLatencyTracker_ConcurrentAndReset(t *testing.T) {
	tracker := NewLatencyTracker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tracker.ObserveRequest(RequestObservation{Method: "POST", Path: "/orders", Code: 201, Duration: time.Millisecond})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), tracker.Requests()[0].Count)

	tracker.Reset()
	assert.Empty(t, tracker.Requests())
}
