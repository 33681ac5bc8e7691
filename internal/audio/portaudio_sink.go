package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const mixerFramesPerBuffer = 1024

// paVoice is one scheduled span inside the mixer. The playhead advances by
// the voice's rate per output frame, so a rate change mid-playback takes
// effect without repositioning.
type paVoice struct {
	sink    *PortAudioSink
	samples []float32
	when    float64
	rate    float64
	pos     float64
	started bool
	done    bool
}

// SetRate changes this voice's playback rate immediately.
func (v *paVoice) SetRate(rate float64) {
	v.sink.mu.Lock()
	defer v.sink.mu.Unlock()
	if rate > 0 {
		v.rate = rate
	}
}

// Stop discards the voice.
func (v *paVoice) Stop() {
	v.sink.mu.Lock()
	defer v.sink.mu.Unlock()
	v.done = true
}

// PortAudioSink plays scheduled sample spans through the default output
// device. A software mixer in the stream callback sums all active voices,
// so overlapping or back-to-back schedules play gaplessly.
type PortAudioSink struct {
	mu         sync.Mutex
	clock      Clock
	sampleRate int
	stream     *portaudio.Stream
	voices     []*paVoice
	closed     bool
}

// NewPortAudioSink opens the default output device at the given sample rate.
func NewPortAudioSink(clock Clock, sampleRate int) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	s := &PortAudioSink{
		clock:      clock,
		sampleRate: sampleRate,
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), mixerFramesPerBuffer, s.mix)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("opening output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("starting output stream: %w", err)
	}

	s.stream = stream
	return s, nil
}

// SampleRate returns the sink's fixed sample rate.
func (s *PortAudioSink) SampleRate() int {
	return s.sampleRate
}

// Play schedules a span to start at the given clock time.
func (s *PortAudioSink) Play(samples []float32, when float64, rate float64) (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("sink closed")
	}
	if rate <= 0 {
		rate = 1.0
	}

	v := &paVoice{sink: s, samples: samples, when: when, rate: rate}
	s.voices = append(s.voices, v)
	return v, nil
}

// mix is the stream callback. It sums all active voices into the output
// buffer, clamped to [-1, 1]. While the clock is suspended it emits silence
// and leaves every playhead untouched.
func (s *PortAudioSink) mix(out []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range out {
		out[i] = 0
	}
	if s.clock.Suspended() {
		return
	}

	now := s.clock.Now()
	dt := 1.0 / float64(s.sampleRate)

	live := s.voices[:0]
	for _, v := range s.voices {
		if v.done {
			continue
		}
		for i := range out {
			if !v.started {
				if now+float64(i)*dt < v.when {
					continue
				}
				v.started = true
			}
			if int(v.pos) >= len(v.samples)-1 {
				v.done = true
				break
			}
			// Linear interpolation between neighbouring samples.
			base := int(v.pos)
			frac := float32(v.pos - float64(base))
			out[i] += v.samples[base]*(1-frac) + v.samples[base+1]*frac
			v.pos += v.rate
		}
		if !v.done {
			live = append(live, v)
		}
	}
	s.voices = live

	for i := range out {
		if out[i] > 1 {
			out[i] = 1
		} else if out[i] < -1 {
			out[i] = -1
		}
	}
}

// Close stops the stream and releases the device.
func (s *PortAudioSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.voices = nil
	stream := s.stream
	s.mu.Unlock()

	if stream != nil {
		_ = stream.Stop()
		_ = stream.Close()
	}
	return portaudio.Terminate()
}

// Ensure PortAudioSink implements Sink at compile time.
var _ Sink = (*PortAudioSink)(nil)
