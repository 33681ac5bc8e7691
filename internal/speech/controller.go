package speech

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/inkhorn/inkhorn/internal/audio"
	"github.com/oklog/ulid/v2"
)

// State is an observable snapshot of a playback session.
type State struct {
	SessionID          string  `json:"sessionId"`
	Status             Status  `json:"status"`
	Error              string  `json:"error,omitempty"`
	ModelProgress      float64 `json:"modelProgress"`
	GenerationProgress float64 `json:"generationProgress"`
	SentenceIndex      int     `json:"sentenceIndex"`
	TotalSentences     int     `json:"totalSentences"`
	CurrentSentence    string  `json:"currentSentence,omitempty"`
	Position           float64 `json:"position"`
	Rate               float64 `json:"rate"`
}

// WorkerFactory spawns a fresh generation worker for one session.
type WorkerFactory func() (Worker, error)

// SinkFactory opens a playback sink against the session clock. Opening
// the sink is the platform capability check; it runs synchronously inside
// Start, before any worker exists.
type SinkFactory func(clock audio.Clock) (audio.Sink, error)

// Controller drives one text-to-speech session at a time: it owns the
// worker lifecycle, routes audio chunks into the scheduler, and exposes
// transport controls. Status transitions go through reduce; the controller
// adds only the side effects.
type Controller struct {
	mu sync.Mutex

	status    Status
	errMsg    string
	sessionID string
	// epoch invalidates late worker events after a stop or restart.
	epoch int

	worker    Worker
	scheduler *audio.Scheduler
	sink      audio.Sink

	pendingText  string
	pendingVoice string

	modelProgress  float64
	genProgress    float64
	sentenceIndex  int
	totalSentences int
	genSentence    string

	newWorker WorkerFactory
	openSink  SinkFactory
	initOpts  InitOptions
	logger    *slog.Logger
}

// NewController creates a controller over the given factories.
func NewController(newWorker WorkerFactory, openSink SinkFactory, initOpts InitOptions) *Controller {
	return &Controller{
		status:    StatusIdle,
		newWorker: newWorker,
		openSink:  openSink,
		initOpts:  initOpts,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger for the controller.
func (c *Controller) WithLogger(logger *slog.Logger) *Controller {
	c.logger = logger
	return c
}

// Start begins a new session for the given text, replacing any active one.
// The sink opens synchronously inside this call; a capability failure
// surfaces as the error status without ever spawning a worker.
func (c *Controller) Start(text, voice string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	clock := audio.NewSystemClock()
	sink, err := c.openSink(clock)
	if err != nil {
		c.status = StatusError
		c.errMsg = fmt.Sprintf("audio backend unavailable: %v", err)
		c.logger.Error("speech session failed capability check",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("opening audio sink: %w", err)
	}

	worker, err := c.newWorker()
	if err != nil {
		_ = sink.Close()
		c.status = StatusError
		c.errMsg = fmt.Sprintf("spawning generation worker: %v", err)
		return "", fmt.Errorf("spawning generation worker: %w", err)
	}

	epoch := c.epoch
	scheduler := audio.NewScheduler(clock, sink).
		WithLogger(c.logger).
		WithOnIdle(func() { c.apply(epoch, sigPlaybackDrained) })

	c.sink = sink
	c.worker = worker
	c.scheduler = scheduler
	c.sessionID = ulid.Make().String()
	c.pendingText = text
	c.pendingVoice = voice
	c.status = StatusLoadingModel
	c.errMsg = ""

	if err := worker.Send(Request{Type: RequestInitialize, Options: c.initOpts}); err != nil {
		c.teardownLocked()
		c.status = StatusError
		c.errMsg = err.Error()
		return "", fmt.Errorf("initializing worker: %w", err)
	}

	go c.consumeEvents(worker, epoch)

	c.logger.Info("speech session started",
		slog.String("session_id", c.sessionID),
		slog.Int("text_length", len(text)))
	return c.sessionID, nil
}

// Pause suspends playback. A no-op unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPlaying {
		return
	}
	c.scheduler.Pause()
	c.status = reduce(c.status, sigPause)
}

// Resume continues paused playback. A no-op unless paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return
	}
	c.scheduler.Resume()
	c.status = reduce(c.status, sigResume)
}

// SetRate changes the playback rate for current and future audio.
func (c *Controller) SetRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scheduler != nil {
		c.scheduler.SetRate(rate)
	}
}

// Stop tears the session down and returns to idle. Idempotent and safe
// from any state, including error.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.status = reduce(c.status, sigStop)
	c.errMsg = ""
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		SessionID:          c.sessionID,
		Status:             c.status,
		Error:              c.errMsg,
		ModelProgress:      c.modelProgress,
		GenerationProgress: c.genProgress,
		SentenceIndex:      c.sentenceIndex,
		TotalSentences:     c.totalSentences,
		CurrentSentence:    c.genSentence,
		Rate:               1.0,
	}
	if c.scheduler != nil {
		st.Position = c.scheduler.Position()
		st.Rate = c.scheduler.Rate()
		// Captioning follows what is scheduled, not what is generated.
		if sentence, ok := c.scheduler.CurrentSentence(); ok {
			st.CurrentSentence = sentence.Text
			st.SentenceIndex = sentence.Index
		}
	}
	return st
}

// consumeEvents routes the worker's event stream into the state machine.
// The captured epoch discards anything arriving after the session it
// belongs to was stopped.
func (c *Controller) consumeEvents(worker Worker, epoch int) {
	for ev := range worker.Events() {
		c.handleEvent(epoch, ev)
	}
}

func (c *Controller) handleEvent(epoch int, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}

	switch ev.Type {
	case EventModelProgress:
		c.modelProgress = ev.Progress
		c.status = reduce(c.status, sigModelProgress)

	case EventModelReady:
		c.modelProgress = 1.0
		c.status = reduce(c.status, sigModelReady)
		// Dispatch the request held pending since Start.
		req := Request{Type: RequestGenerate, Text: c.pendingText, Voice: c.pendingVoice}
		c.pendingText = ""
		if err := c.worker.Send(req); err != nil {
			c.failLocked(err.Error())
		}

	case EventGenerationProgress:
		c.genProgress = ev.Progress
		c.sentenceIndex = ev.SentenceIndex
		c.totalSentences = ev.TotalSentences
		c.genSentence = ev.CurrentSentence
		c.status = reduce(c.status, sigGenerationProgress)

	case EventAudioChunk:
		if ev.Chunk != nil {
			c.scheduler.Enqueue(ev.Chunk)
		}
		c.status = reduce(c.status, sigAudioChunk)
		if c.status == StatusGenerating && c.scheduler.Playing() {
			c.status = reduce(c.status, sigPlaybackStarted)
		}

	case EventGenerationComplete:
		c.scheduler.MarkStreamComplete()
		// A short text may end below the buffer threshold; start whatever
		// is queued rather than waiting forever.
		c.scheduler.Flush()
		if c.scheduler.Playing() {
			if c.status == StatusGenerating {
				c.status = reduce(c.status, sigPlaybackStarted)
			}
		} else {
			c.status = reduce(c.status, sigPlaybackDrained)
			c.teardownLocked()
		}

	case EventError:
		c.failLocked(ev.Err)

	case EventStopped:
		// Worker acknowledgement of a stop request; nothing to do.
	}
}

// apply feeds a scheduler signal into the state machine, guarded by epoch.
func (c *Controller) apply(epoch int, sig signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.status = reduce(c.status, sig)
	if c.status == StatusIdle {
		c.teardownLocked()
	}
}

// failLocked transitions to the terminal error state and tears down
// resources, keeping the message for the caller to render.
func (c *Controller) failLocked(msg string) {
	c.status = reduce(c.status, sigWorkerError)
	c.errMsg = msg
	c.teardownLocked()
	c.logger.Error("speech session failed",
		slog.String("session_id", c.sessionID),
		slog.String("error", msg))
}

// stopLocked tears down any active session and bumps the epoch so late
// worker events are discarded.
func (c *Controller) stopLocked() {
	if c.worker != nil {
		// Best-effort polite stop, then hard terminate.
		_ = c.worker.Send(Request{Type: RequestStop})
	}
	c.teardownLocked()
	c.pendingText = ""
	c.pendingVoice = ""
	c.modelProgress = 0
	c.genProgress = 0
	c.sentenceIndex = 0
	c.totalSentences = 0
	c.genSentence = ""
}

// teardownLocked releases the worker, scheduler, and sink. The epoch bump
// comes first so nothing delivered mid-teardown mutates fresh state.
func (c *Controller) teardownLocked() {
	c.epoch++
	if c.worker != nil {
		c.worker.Terminate()
		c.worker = nil
	}
	if c.scheduler != nil {
		c.scheduler.Stop()
		c.scheduler = nil
	}
	if c.sink != nil {
		_ = c.sink.Close()
		c.sink = nil
	}
}
