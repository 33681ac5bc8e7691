package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectUntil(t *testing.T, w Worker, stop EventType) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
			if ev.Type == stop {
				return events
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s, got %d events", stop, len(events))
		}
	}
}

func TestInProcessWorker_InitializeAndGenerate(t *testing.T) {
	w := NewInProcessWorker(NewToneSynthesizer(24000))
	defer w.Terminate()

	require.NoError(t, w.Send(Request{Type: RequestInitialize}))
	events := collectUntil(t, w, EventModelReady)
	require.NotEmpty(t, events)
	assert.Equal(t, EventModelProgress, events[0].Type)

	require.NoError(t, w.Send(Request{Type: RequestGenerate, Text: "One. Two. Three."}))
	events = collectUntil(t, w, EventGenerationComplete)

	var chunks, progress int
	for _, ev := range events {
		switch ev.Type {
		case EventAudioChunk:
			require.NotNil(t, ev.Chunk)
			assert.NotEmpty(t, ev.Chunk.Samples)
			chunks++
		case EventGenerationProgress:
			assert.Equal(t, 3, ev.TotalSentences)
			progress++
		}
	}
	assert.Equal(t, 3, chunks, "one chunk per sentence")
	assert.Equal(t, 3, progress)
}

func TestInProcessWorker_StopAcknowledged(t *testing.T) {
	w := NewInProcessWorker(NewToneSynthesizer(24000))
	defer w.Terminate()

	require.NoError(t, w.Send(Request{Type: RequestStop}))
	events := collectUntil(t, w, EventStopped)
	assert.Equal(t, EventStopped, events[len(events)-1].Type)
}

func TestInProcessWorker_TerminateClosesEvents(t *testing.T) {
	w := NewInProcessWorker(NewToneSynthesizer(24000))

	w.Terminate()
	w.Terminate() // idempotent

	require.Eventually(t, func() bool {
		_, ok := <-w.Events()
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.Error(t, w.Send(Request{Type: RequestGenerate, Text: "late"}))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"terminators", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"no terminator is one sentence", "just a fragment", []string{"just a fragment"}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"trailing fragment", "Done. And then", []string{"Done.", "And then"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}
