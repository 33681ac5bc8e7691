package audio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	t         float64
	suspended bool
}

func (c *fakeClock) Now() float64    { return c.t }
func (c *fakeClock) Suspend()        { c.suspended = true }
func (c *fakeClock) Resume()         { c.suspended = false }
func (c *fakeClock) Suspended() bool { return c.suspended }

func (c *fakeClock) Advance(d float64) {
	if !c.suspended {
		c.t += d
	}
}

// fakeSource records rate changes and stops.
type fakeSource struct {
	rate    float64
	stopped bool
}

func (s *fakeSource) SetRate(rate float64) { s.rate = rate }
func (s *fakeSource) Stop()                { s.stopped = true }

// fakeSink records every Play call.
type fakeSink struct {
	sampleRate int
	plays      []playCall
	sources    []*fakeSource
	closed     bool
}

type playCall struct {
	numSamples int
	when       float64
	rate       float64
}

func (s *fakeSink) SampleRate() int { return s.sampleRate }

func (s *fakeSink) Play(samples []float32, when float64, rate float64) (Source, error) {
	s.plays = append(s.plays, playCall{numSamples: len(samples), when: when, rate: rate})
	src := &fakeSource{rate: rate}
	s.sources = append(s.sources, src)
	return src, nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

// chunkOf builds a chunk of the given duration at the sink's 24kHz rate.
func chunkOf(seconds float64, index int) *Chunk {
	return &Chunk{
		Samples:       make([]float32, int(seconds*24000)),
		Text:          fmt.Sprintf("sentence %d", index),
		SentenceIndex: index,
	}
}

func newTestScheduler() (*Scheduler, *fakeClock, *fakeSink) {
	clock := &fakeClock{}
	sink := &fakeSink{sampleRate: 24000}
	sched := NewScheduler(clock, sink)
	sched.manualTick = true
	return sched, clock, sink
}

func TestScheduler_BufferThreshold(t *testing.T) {
	sched, _, sink := newTestScheduler()
	defer sched.Stop()

	sched.Enqueue(chunkOf(0.5, 0))
	assert.False(t, sched.Playing(), "one chunk is below the buffer threshold")
	assert.Empty(t, sink.plays)

	sched.Enqueue(chunkOf(0.5, 1))
	assert.True(t, sched.Playing(), "playback starts on the second chunk")
	assert.Len(t, sink.plays, 2, "both buffered chunks schedule immediately")
}

func TestScheduler_GaplessScheduleTimes(t *testing.T) {
	sched, _, sink := newTestScheduler()
	defer sched.Stop()

	sched.Enqueue(chunkOf(0.5, 0))
	sched.Enqueue(chunkOf(0.5, 1))

	require.Len(t, sink.plays, 2)
	// First chunk starts just past now; the second starts exactly where
	// the first ends.
	assert.InDelta(t, 0.01, sink.plays[0].when, 1e-9)
	assert.InDelta(t, 0.51, sink.plays[1].when, 1e-9)
}

func TestScheduler_LookAheadWindow(t *testing.T) {
	sched, clock, sink := newTestScheduler()
	defer sched.Stop()

	// Five one-second chunks: only the first two fit inside now+2.0s.
	for i := 0; i < 5; i++ {
		sched.Enqueue(chunkOf(1.0, i))
	}
	assert.Len(t, sink.plays, 2)

	// Advancing the clock lets the tick schedule more of the queue.
	clock.Advance(1.5)
	sched.Tick()
	assert.Len(t, sink.plays, 4)

	clock.Advance(1.5)
	sched.Tick()
	assert.Len(t, sink.plays, 5)
}

func TestScheduler_CurrentSentenceTracksScheduling(t *testing.T) {
	sched, clock, _ := newTestScheduler()
	defer sched.Stop()

	_, ok := sched.CurrentSentence()
	assert.False(t, ok)

	for i := 0; i < 4; i++ {
		sched.Enqueue(chunkOf(1.0, i))
	}

	// Two chunks scheduled; the rest are generated but not scheduled,
	// so they must not be the current sentence yet.
	current, ok := sched.CurrentSentence()
	require.True(t, ok)
	assert.Equal(t, 1, current.Index)

	clock.Advance(1.5)
	sched.Tick()
	current, _ = sched.CurrentSentence()
	assert.Equal(t, 3, current.Index)
}

func TestScheduler_SetRateRetroactive(t *testing.T) {
	sched, _, sink := newTestScheduler()
	defer sched.Stop()

	sched.Enqueue(chunkOf(0.5, 0))
	sched.Enqueue(chunkOf(0.5, 1))
	require.Len(t, sink.sources, 2)

	sched.SetRate(1.5)
	for _, src := range sink.sources {
		assert.Equal(t, 1.5, src.rate, "already scheduled sources pick up the new rate")
	}

	// Future scheduling uses the new rate too.
	sched.Enqueue(chunkOf(0.5, 2))
	sched.Tick()
	assert.Equal(t, 1.5, sink.plays[len(sink.plays)-1].rate)
}

func TestScheduler_PauseResumeFreezesClock(t *testing.T) {
	sched, clock, sink := newTestScheduler()
	defer sched.Stop()

	sched.Enqueue(chunkOf(1.0, 0))
	sched.Enqueue(chunkOf(1.0, 1))
	sched.Enqueue(chunkOf(1.0, 2))
	scheduledBefore := len(sink.plays)

	sched.Pause()
	assert.True(t, clock.suspended, "pause suspends the clock itself")
	assert.True(t, sched.Paused())

	// A tick while paused must do no work.
	sched.Tick()
	assert.Len(t, sink.plays, scheduledBefore)

	sched.Resume()
	assert.False(t, clock.suspended)
	assert.False(t, sched.Paused())
}

func TestScheduler_PositionClampedToScheduled(t *testing.T) {
	sched, clock, _ := newTestScheduler()
	defer sched.Stop()

	assert.Zero(t, sched.Position())

	sched.Enqueue(chunkOf(1.0, 0))
	sched.Enqueue(chunkOf(1.0, 1))

	clock.Advance(0.5)
	assert.InDelta(t, 0.5, sched.Position(), 1e-9)

	// Past the end of everything scheduled, position stays clamped.
	clock.Advance(10)
	assert.InDelta(t, 2.0, sched.Position(), 1e-9)
}

func TestScheduler_PositionScalesWithRate(t *testing.T) {
	sched, clock, _ := newTestScheduler()
	defer sched.Stop()

	sched.SetRate(2.0)
	sched.Enqueue(chunkOf(2.0, 0))
	sched.Enqueue(chunkOf(2.0, 1))

	clock.Advance(0.5)
	assert.InDelta(t, 1.0, sched.Position(), 1e-9, "clock seconds times rate gives content seconds")
}

func TestScheduler_DrainsToIdle(t *testing.T) {
	sched, clock, _ := newTestScheduler()

	var idled bool
	sched.WithOnIdle(func() { idled = true })

	sched.Enqueue(chunkOf(0.5, 0))
	sched.Enqueue(chunkOf(0.5, 1))
	sched.MarkStreamComplete()

	// Still inside the scheduled window: not idle yet.
	clock.Advance(0.5)
	sched.Tick()
	assert.True(t, sched.Playing())
	assert.False(t, idled)

	// Past the last scheduled end time with an empty queue.
	clock.Advance(1.0)
	sched.Tick()
	assert.False(t, sched.Playing())
	assert.True(t, idled)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	sched, clock, sink := newTestScheduler()

	sched.Stop() // stop before anything started

	sched.Enqueue(chunkOf(0.5, 0))
	sched.Enqueue(chunkOf(0.5, 1))
	sched.Pause()

	sched.Stop()
	assert.False(t, sched.Playing())
	assert.False(t, clock.suspended, "stop releases a suspended clock")
	for _, src := range sink.sources {
		assert.True(t, src.stopped)
	}

	sched.Stop() // and again

	// A fresh stream starts cleanly after stop.
	sched.Enqueue(chunkOf(0.5, 2))
	assert.False(t, sched.Playing())
	sched.Enqueue(chunkOf(0.5, 3))
	assert.True(t, sched.Playing())
	sched.Stop()
}

func TestScheduler_OnSentenceCallback(t *testing.T) {
	sched, _, _ := newTestScheduler()
	defer sched.Stop()

	var seen []int
	sched.WithOnSentence(func(s Sentence) { seen = append(seen, s.Index) })

	sched.Enqueue(chunkOf(0.5, 0))
	sched.Enqueue(chunkOf(0.5, 1))
	assert.Equal(t, []int{0, 1}, seen)
}
