package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// wavVoice is one scheduled span in the offline render.
type wavVoice struct {
	sink    *WAVSink
	samples []float32
	when    float64
	rate    float64
	done    bool
}

// SetRate changes the rate used when the file is rendered on Close.
func (v *wavVoice) SetRate(rate float64) {
	v.sink.mu.Lock()
	defer v.sink.mu.Unlock()
	if rate > 0 {
		v.rate = rate
	}
}

// Stop excludes the voice from the render.
func (v *wavVoice) Stop() {
	v.sink.mu.Lock()
	defer v.sink.mu.Unlock()
	v.done = true
}

// WAVSink renders scheduled spans offline to a 16-bit mono PCM WAV file.
// Nothing is written until Close, so retroactive rate changes apply to
// already scheduled spans the same way they do on a live device.
type WAVSink struct {
	mu         sync.Mutex
	path       string
	sampleRate int
	voices     []*wavVoice
	closed     bool
}

// NewWAVSink creates a file render sink. The file is written on Close.
func NewWAVSink(path string, sampleRate int) (*WAVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("wav render path not configured")
	}
	// Fail early if the location is not writable.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening wav render target: %w", err)
	}
	_ = f.Close()

	return &WAVSink{path: path, sampleRate: sampleRate}, nil
}

// SampleRate returns the sink's fixed sample rate.
func (s *WAVSink) SampleRate() int {
	return s.sampleRate
}

// Play records a span for the final render.
func (s *WAVSink) Play(samples []float32, when float64, rate float64) (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("sink closed")
	}
	if rate <= 0 {
		rate = 1.0
	}

	v := &wavVoice{sink: s, samples: samples, when: when, rate: rate}
	s.voices = append(s.voices, v)
	return v, nil
}

// Close mixes all recorded spans and writes the WAV file.
func (s *WAVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	track := s.render()
	data, err := encodeWAV(track, s.sampleRate)
	if err != nil {
		return fmt.Errorf("encoding wav render: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing wav render: %w", err)
	}
	return nil
}

// render mixes voices into one float32 track, resampling each span by its
// rate with linear interpolation.
func (s *WAVSink) render() []float32 {
	var total int
	for _, v := range s.voices {
		if v.done || len(v.samples) == 0 {
			continue
		}
		start := int(v.when * float64(s.sampleRate))
		length := int(float64(len(v.samples)) / v.rate)
		if end := start + length; end > total {
			total = end
		}
	}

	track := make([]float32, total)
	for _, v := range s.voices {
		if v.done || len(v.samples) == 0 {
			continue
		}
		start := int(v.when * float64(s.sampleRate))
		length := int(float64(len(v.samples)) / v.rate)
		for i := 0; i < length && start+i < total; i++ {
			pos := float64(i) * v.rate
			base := int(pos)
			if base >= len(v.samples)-1 {
				break
			}
			frac := float32(pos - float64(base))
			track[start+i] += v.samples[base]*(1-frac) + v.samples[base+1]*frac
		}
	}

	for i, sample := range track {
		if sample > 1 {
			track[i] = 1
		} else if sample < -1 {
			track[i] = -1
		}
	}
	return track
}

// encodeWAV writes a minimal RIFF/WAVE container with one 16-bit mono
// PCM data chunk.
func encodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	write := func(v any) {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(1)) // mono
	write(uint32(sampleRate))
	write(uint32(sampleRate * 2)) // byte rate
	write(uint16(2))              // block align
	write(uint16(16))             // bits per sample

	buf.WriteString("data")
	write(uint32(dataSize))
	for _, sample := range samples {
		write(int16(sample * 32767))
	}

	return buf.Bytes(), nil
}

// Ensure WAVSink implements Sink at compile time.
var _ Sink = (*WAVSink)(nil)
