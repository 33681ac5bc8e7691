package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// Chunk is one generated span of PCM audio with the sentence it voices.
// The scheduler owns a chunk while it sits in the queue; once scheduled it
// is referenced only by the sink source playing it.
type Chunk struct {
	Samples       []float32
	Text          string
	SentenceIndex int
}

// Duration returns the chunk's length in seconds at the given sample rate.
func (c *Chunk) Duration(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(sampleRate)
}

// Source is a single scheduled span of audio inside a sink.
type Source interface {
	// SetRate changes the playback rate of this source immediately,
	// including mid-playback.
	SetRate(rate float64)
	// Stop discards the source. Idempotent.
	Stop()
}

// Sink is a playback backend that accepts PCM sample spans scheduled
// against the shared Clock.
type Sink interface {
	// SampleRate is the fixed rate the sink consumes samples at.
	SampleRate() int
	// Play schedules samples to start at the given clock time (seconds)
	// played at the given rate multiplier.
	Play(samples []float32, when float64, rate float64) (Source, error)
	Close() error
}

// ErrNoBackend is returned when no playback backend can be opened.
var ErrNoBackend = errors.New("no audio playback backend available")

// SinkConfig selects and parameterises the playback backend.
type SinkConfig struct {
	// Backend is "auto", "portaudio", or "wav".
	Backend string
	// SampleRate of the PCM stream, in Hz.
	SampleRate int
	// RenderPath is the output file for the wav backend.
	RenderPath string
}

// OpenSink opens a playback backend per the config. With "auto" it tries the
// device backend first and falls back to file rendering when a render path
// is configured. Failing to open any backend is a capability failure the
// caller must surface before spawning generation work.
func OpenSink(cfg SinkConfig, clock Clock, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "portaudio":
		return NewPortAudioSink(clock, cfg.SampleRate)
	case "wav":
		return NewWAVSink(cfg.RenderPath, cfg.SampleRate)
	case "", "auto":
		sink, err := NewPortAudioSink(clock, cfg.SampleRate)
		if err == nil {
			return sink, nil
		}
		logger.Warn("device audio backend unavailable",
			slog.String("error", err.Error()))
		if cfg.RenderPath != "" {
			return NewWAVSink(cfg.RenderPath, cfg.SampleRate)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoBackend, err)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", cfg.Backend)
	}
}
