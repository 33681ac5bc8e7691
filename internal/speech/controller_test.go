package speech

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inkhorn/inkhorn/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWorker lets the test play the worker's side of the protocol.
type scriptedWorker struct {
	mu         sync.Mutex
	sent       []Request
	events     chan Event
	terminated bool
}

func newScriptedWorker() *scriptedWorker {
	return &scriptedWorker{events: make(chan Event, 64)}
}

func (w *scriptedWorker) Send(req Request) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.terminated {
		return fmt.Errorf("worker terminated")
	}
	w.sent = append(w.sent, req)
	return nil
}

func (w *scriptedWorker) Events() <-chan Event { return w.events }

func (w *scriptedWorker) Terminate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.terminated {
		w.terminated = true
		close(w.events)
	}
}

func (w *scriptedWorker) emit(ev Event) { w.events <- ev }

func (w *scriptedWorker) requests() []Request {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Request(nil), w.sent...)
}

// stubSink is an always-available playback backend.
type stubSink struct{}

type stubSource struct{}

func (stubSource) SetRate(float64) {}
func (stubSource) Stop()           {}

func (stubSink) SampleRate() int { return 24000 }
func (stubSink) Play(samples []float32, when, rate float64) (audio.Source, error) {
	return stubSource{}, nil
}
func (stubSink) Close() error { return nil }

func newTestController(worker *scriptedWorker) *Controller {
	return NewController(
		func() (Worker, error) { return worker, nil },
		func(audio.Clock) (audio.Sink, error) { return stubSink{}, nil },
		InitOptions{},
	)
}

func waitForStatus(t *testing.T, c *Controller, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State().Status == want
	}, 2*time.Second, 5*time.Millisecond, "waiting for status %s, at %s", want, c.State().Status)
}

// shortChunk is 50ms of silence, enough to schedule and drain quickly.
func shortChunk(index int) *audio.Chunk {
	return &audio.Chunk{
		Samples:       make([]float32, 1200),
		Text:          fmt.Sprintf("sentence %d", index),
		SentenceIndex: index,
	}
}

func TestController_FullLifecycle(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	id, err := c.Start("Hello there. General greeting.", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, StatusLoadingModel, c.State().Status)

	// Start sends initialize; generate stays pending until model-ready.
	reqs := worker.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, RequestInitialize, reqs[0].Type)

	worker.emit(Event{Type: EventModelReady})
	waitForStatus(t, c, StatusGenerating)

	reqs = worker.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, RequestGenerate, reqs[1].Type)
	assert.Equal(t, "Hello there. General greeting.", reqs[1].Text)

	// One chunk is below the buffer threshold; the second starts playback.
	worker.emit(Event{Type: EventAudioChunk, Chunk: shortChunk(0)})
	worker.emit(Event{Type: EventGenerationProgress, Progress: 0.5, SentenceIndex: 0, TotalSentences: 2})
	assert.NotEqual(t, StatusPlaying, c.State().Status)

	worker.emit(Event{Type: EventAudioChunk, Chunk: shortChunk(1)})
	waitForStatus(t, c, StatusPlaying)

	worker.emit(Event{Type: EventGenerationComplete})
	waitForStatus(t, c, StatusIdle)
}

func TestController_ShortTextFlushesBelowThreshold(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	_, err := c.Start("Hi.", "")
	require.NoError(t, err)

	worker.emit(Event{Type: EventModelReady})
	worker.emit(Event{Type: EventAudioChunk, Chunk: shortChunk(0)})
	worker.emit(Event{Type: EventGenerationComplete})

	// A single chunk must still play out and drain to idle.
	waitForStatus(t, c, StatusIdle)
}

// longChunk is two seconds of silence so transport tests act on playback
// that is still in flight.
func longChunk(index int) *audio.Chunk {
	return &audio.Chunk{
		Samples:       make([]float32, 48000),
		Text:          fmt.Sprintf("sentence %d", index),
		SentenceIndex: index,
	}
}

func TestController_PauseResume(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	_, err := c.Start("One. Two.", "")
	require.NoError(t, err)
	worker.emit(Event{Type: EventModelReady})
	worker.emit(Event{Type: EventAudioChunk, Chunk: longChunk(0)})
	worker.emit(Event{Type: EventAudioChunk, Chunk: longChunk(1)})
	waitForStatus(t, c, StatusPlaying)

	c.Pause()
	assert.Equal(t, StatusPaused, c.State().Status)

	// Pause while paused stays paused.
	c.Pause()
	assert.Equal(t, StatusPaused, c.State().Status)

	c.Resume()
	assert.Equal(t, StatusPlaying, c.State().Status)

	c.Stop()
}

func TestController_WorkerErrorIsTerminal(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	_, err := c.Start("text", "")
	require.NoError(t, err)

	worker.emit(Event{Type: EventError, Err: "model load failed"})
	waitForStatus(t, c, StatusError)
	assert.Equal(t, "model load failed", c.State().Error)

	// Stop clears the error state back to idle.
	c.Stop()
	assert.Equal(t, StatusIdle, c.State().Status)
	assert.Empty(t, c.State().Error)
}

func TestController_CapabilityFailureBeforeWorker(t *testing.T) {
	var spawned bool
	c := NewController(
		func() (Worker, error) { spawned = true; return newScriptedWorker(), nil },
		func(audio.Clock) (audio.Sink, error) { return nil, fmt.Errorf("no output device") },
		InitOptions{},
	)

	_, err := c.Start("text", "")
	require.Error(t, err)
	assert.Equal(t, StatusError, c.State().Status)
	assert.False(t, spawned, "capability failure must never spawn a worker")
}

func TestController_LateEventsAfterStopIgnored(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	_, err := c.Start("text", "")
	require.NoError(t, err)

	c.Stop()
	assert.Equal(t, StatusIdle, c.State().Status)

	// Events from the dead session must not resurrect state.
	c.handleEvent(0, Event{Type: EventError, Err: "late"})
	c.handleEvent(0, Event{Type: EventModelReady})
	assert.Equal(t, StatusIdle, c.State().Status)
	assert.Empty(t, c.State().Error)
}

func TestController_StopIsIdempotent(t *testing.T) {
	worker := newScriptedWorker()
	c := newTestController(worker)

	c.Stop()
	assert.Equal(t, StatusIdle, c.State().Status)

	_, err := c.Start("text", "")
	require.NoError(t, err)
	c.Stop()
	c.Stop()
	assert.Equal(t, StatusIdle, c.State().Status)
}

func TestController_StartReplacesActiveSession(t *testing.T) {
	first := newScriptedWorker()
	second := newScriptedWorker()
	workers := []*scriptedWorker{first, second}
	var next int

	c := NewController(
		func() (Worker, error) {
			w := workers[next]
			next++
			return w, nil
		},
		func(audio.Clock) (audio.Sink, error) { return stubSink{}, nil },
		InitOptions{},
	)

	id1, err := c.Start("first", "")
	require.NoError(t, err)

	id2, err := c.Start("second", "")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	first.mu.Lock()
	terminated := first.terminated
	first.mu.Unlock()
	assert.True(t, terminated, "starting a new session terminates the old worker")

	c.Stop()
}
