package audio

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// MinBufferChunks is the look-ahead buffer: playback does not start
	// until this many chunks are queued, trading a fixed startup latency
	// for resilience against generation-rate jitter.
	MinBufferChunks = 2

	// lookAheadWindow is how far past the clock the scheduler keeps
	// sources scheduled, in seconds.
	lookAheadWindow = 2.0

	// scheduleEpsilon keeps the first schedule point strictly after "now";
	// some backends reject a start time of exactly now.
	scheduleEpsilon = 0.01

	// tickInterval drives the scheduling step. The math above assumes
	// sub-10ms scheduling jitter from the sink.
	tickInterval = 100 * time.Millisecond
)

// Sentence is the currently voiced text span, updated when its chunk is
// scheduled (not when it is generated) so captioning tracks playback.
type Sentence struct {
	Text  string
	Index int
}

// Scheduler turns a FIFO queue of PCM chunks into gapless scheduled
// playback on a Sink. The periodic tick is the sole driver of scheduling;
// transport controls only flip state and run one immediate catch-up step.
type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	sink  Sink

	queue     []*Chunk
	scheduled []Source

	playing        bool
	paused         bool
	streamComplete bool

	startTime float64
	// scheduledEnd is the absolute clock time the last scheduled source
	// finishes at.
	scheduledEnd float64
	// contentDuration is cumulative scheduled chunk length in content
	// seconds, the clamp bound for Position.
	contentDuration float64
	rate            float64

	current    Sentence
	hasCurrent bool

	tickerStop chan struct{}
	// manualTick suppresses the internal ticker so tests drive Tick
	// deterministically.
	manualTick bool

	onSentence func(Sentence)
	onIdle     func()
	logger     *slog.Logger
}

// NewScheduler creates a scheduler over the given clock and sink.
func NewScheduler(clock Clock, sink Sink) *Scheduler {
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		rate:   1.0,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the scheduler.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// WithOnSentence registers a callback fired when a chunk is scheduled.
func (s *Scheduler) WithOnSentence(fn func(Sentence)) *Scheduler {
	s.onSentence = fn
	return s
}

// WithOnIdle registers a callback fired when playback drains to idle.
func (s *Scheduler) WithOnIdle(fn func()) *Scheduler {
	s.onIdle = fn
	return s
}

// Enqueue appends a chunk to the queue. Playback starts as soon as the
// queue reaches MinBufferChunks, capturing the clock as the logical start
// time and scheduling immediately rather than waiting for the next tick.
func (s *Scheduler) Enqueue(chunk *Chunk) {
	s.mu.Lock()
	s.queue = append(s.queue, chunk)

	var started []Sentence
	if !s.playing && len(s.queue) >= MinBufferChunks {
		s.playing = true
		s.paused = false
		s.startTime = s.clock.Now()
		s.scheduledEnd = s.startTime
		s.startTickerLocked()
		started = s.scheduleLocked()
		s.logger.Debug("playback started",
			slog.Float64("start", s.startTime),
			slog.Int("buffered", len(s.queue)))
	}
	fn := s.onSentence
	s.mu.Unlock()

	notifySentences(fn, started)
}

// Flush starts playback below the buffer threshold. Used when the stream
// ends with fewer chunks queued than MinBufferChunks; a no-op when already
// playing or when the queue is empty.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.playing || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.paused = false
	s.startTime = s.clock.Now()
	s.scheduledEnd = s.startTime
	s.startTickerLocked()
	started := s.scheduleLocked()
	fn := s.onSentence
	s.mu.Unlock()

	notifySentences(fn, started)
}

// MarkStreamComplete records that no further chunks will arrive. The
// scheduler drains the queue and transitions to idle once the clock passes
// the last scheduled end time.
func (s *Scheduler) MarkStreamComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamComplete = true
}

// Playing reports whether playback has started and not yet drained.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Paused reports whether playback is paused.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// CurrentSentence returns the sentence of the most recently scheduled
// chunk, false before anything was scheduled.
func (s *Scheduler) CurrentSentence() (Sentence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Position reports the playback position in content seconds, derived from
// the clock rather than accumulated ticks so it cannot drift.
func (s *Scheduler) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return 0
	}
	pos := (s.clock.Now() - s.startTime) * s.rate
	if pos < 0 {
		pos = 0
	}
	if pos > s.contentDuration {
		pos = s.contentDuration
	}
	return pos
}

// Pause suspends the clock itself, freezing every in-flight source, and
// stops the tick.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || s.paused {
		return
	}
	s.paused = true
	s.stopTickerLocked()
	s.clock.Suspend()
}

// Resume un-suspends the clock, restarts the tick, and runs one immediate
// scheduling step to fill any gap that opened while paused.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if !s.playing || !s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.clock.Resume()
	s.startTickerLocked()
	started := s.scheduleLocked()
	fn := s.onSentence
	s.mu.Unlock()

	notifySentences(fn, started)
}

// SetRate updates the rate used for future scheduling math and applies the
// new rate to every currently scheduled source, so a mid-sentence change
// is audible immediately.
func (s *Scheduler) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	for _, src := range s.scheduled {
		src.SetRate(rate)
	}
}

// Rate returns the current playback rate multiplier.
func (s *Scheduler) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Stop halts the tick, discards every scheduled source and queued chunk,
// and resets to idle. Idempotent and safe from any state. The tick is
// fully stopped before any state is cleared, so a stale tick can never
// mutate freshly reset state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	for _, src := range s.scheduled {
		src.Stop()
	}
	if s.paused {
		s.clock.Resume()
	}

	s.queue = nil
	s.scheduled = nil
	s.playing = false
	s.paused = false
	s.streamComplete = false
	s.startTime = 0
	s.scheduledEnd = 0
	s.contentDuration = 0
	s.current = Sentence{}
	s.hasCurrent = false
}

// Tick runs one scheduling step. Exposed for the internal ticker and for
// deterministic tests; a no-op unless playing and not paused.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if !s.playing || s.paused {
		s.mu.Unlock()
		return
	}

	started := s.scheduleLocked()

	var becameIdle bool
	if len(s.queue) == 0 && s.streamComplete && s.clock.Now() >= s.scheduledEnd {
		s.stopTickerLocked()
		s.playing = false
		becameIdle = true
		s.logger.Debug("playback drained to idle")
	}
	sentenceFn, idleFn := s.onSentence, s.onIdle
	s.mu.Unlock()

	notifySentences(sentenceFn, started)
	if becameIdle && idleFn != nil {
		idleFn()
	}
}

// scheduleLocked fills the look-ahead window: while chunks are queued and
// the scheduled horizon is inside now+window, dequeue one chunk and hand it
// to the sink at max(now+epsilon, horizon). Returns the sentences whose
// chunks were scheduled, for callback dispatch outside the lock.
func (s *Scheduler) scheduleLocked() []Sentence {
	now := s.clock.Now()
	var started []Sentence

	for len(s.queue) > 0 && s.scheduledEnd < now+lookAheadWindow {
		chunk := s.queue[0]
		s.queue = s.queue[1:]

		when := now + scheduleEpsilon
		if s.scheduledEnd > when {
			when = s.scheduledEnd
		}

		src, err := s.sink.Play(chunk.Samples, when, s.rate)
		if err != nil {
			s.logger.Warn("failed to schedule audio chunk",
				slog.Int("sentence", chunk.SentenceIndex),
				slog.String("error", err.Error()))
			continue
		}
		s.scheduled = append(s.scheduled, src)

		duration := chunk.Duration(s.sink.SampleRate())
		s.scheduledEnd = when + duration/s.rate
		s.contentDuration += duration

		s.current = Sentence{Text: chunk.Text, Index: chunk.SentenceIndex}
		s.hasCurrent = true
		started = append(started, s.current)
	}
	return started
}

func (s *Scheduler) startTickerLocked() {
	if s.manualTick || s.tickerStop != nil {
		return
	}
	stop := make(chan struct{})
	s.tickerStop = stop
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Scheduler) stopTickerLocked() {
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}

func notifySentences(fn func(Sentence), sentences []Sentence) {
	if fn == nil {
		return
	}
	for _, sentence := range sentences {
		fn(sentence)
	}
}
