package speech

import (
	"context"
	"fmt"
	"sync"
)

// Worker is the generation side of the message-passing boundary. The
// controller never calls into generation code directly; it sends requests
// and consumes the event stream. Events is closed after Terminate once the
// worker has fully wound down, so no late message is ever delivered.
type Worker interface {
	Send(req Request) error
	Events() <-chan Event
	Terminate()
}

// Synthesizer is a speech engine the in-process worker can drive. LoadModel
// reports progress in [0,1]; Generate emits progress and audio-chunk events
// and returns once the full text has been synthesized or ctx is cancelled.
type Synthesizer interface {
	LoadModel(ctx context.Context, opts InitOptions, progress func(float64)) error
	Generate(ctx context.Context, text, voice string, emit func(Event)) error
}

// InProcessWorker runs a Synthesizer on its own goroutine behind the
// Worker message contract.
type InProcessWorker struct {
	synth    Synthesizer
	requests chan Request
	events   chan Event
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewInProcessWorker spawns the worker goroutine.
func NewInProcessWorker(synth Synthesizer) *InProcessWorker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &InProcessWorker{
		synth:    synth,
		requests: make(chan Request, 8),
		events:   make(chan Event, 64),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// Send queues a request for the worker. Fails once terminated.
func (w *InProcessWorker) Send(req Request) error {
	select {
	case <-w.done:
		return fmt.Errorf("worker terminated")
	case w.requests <- req:
		return nil
	}
}

// Events returns the worker's event stream.
func (w *InProcessWorker) Events() <-chan Event {
	return w.events
}

// Terminate cancels any in-flight work and shuts the worker down.
// Idempotent.
func (w *InProcessWorker) Terminate() {
	w.once.Do(w.cancel)
}

func (w *InProcessWorker) run(ctx context.Context) {
	defer close(w.events)
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			w.handle(ctx, req)
		}
	}
}

func (w *InProcessWorker) handle(ctx context.Context, req Request) {
	switch req.Type {
	case RequestInitialize:
		err := w.synth.LoadModel(ctx, req.Options, func(p float64) {
			w.emit(ctx, Event{Type: EventModelProgress, Progress: p})
		})
		if err != nil {
			if ctx.Err() == nil {
				w.emit(ctx, Event{Type: EventError, Err: err.Error()})
			}
			return
		}
		w.emit(ctx, Event{Type: EventModelReady})

	case RequestGenerate:
		err := w.synth.Generate(ctx, req.Text, req.Voice, func(ev Event) {
			w.emit(ctx, ev)
		})
		if err != nil {
			if ctx.Err() == nil {
				w.emit(ctx, Event{Type: EventError, Err: err.Error()})
			}
			return
		}
		w.emit(ctx, Event{Type: EventGenerationComplete})

	case RequestStop:
		w.emit(ctx, Event{Type: EventStopped})
	}
}

// emit delivers an event unless the worker is being torn down.
func (w *InProcessWorker) emit(ctx context.Context, ev Event) {
	select {
	case <-ctx.Done():
	case w.events <- ev:
	}
}

// Ensure InProcessWorker implements Worker at compile time.
var _ Worker = (*InProcessWorker)(nil)
