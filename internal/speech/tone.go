package speech

import (
	"context"
	"math"
	"strings"

	"github.com/inkhorn/inkhorn/internal/audio"
)

// ToneSynthesizer is the built-in placeholder engine: it voices each
// sentence as a short tone whose length tracks the sentence length, which
// exercises the full streaming pipeline without a model download.
// TODO: add a neural TTS engine behind the Synthesizer interface.
type ToneSynthesizer struct {
	SampleRate int
}

// NewToneSynthesizer returns a tone engine at the given sample rate.
func NewToneSynthesizer(sampleRate int) *ToneSynthesizer {
	return &ToneSynthesizer{SampleRate: sampleRate}
}

// LoadModel completes immediately; there is nothing to download.
func (t *ToneSynthesizer) LoadModel(ctx context.Context, opts InitOptions, progress func(float64)) error {
	progress(1.0)
	return ctx.Err()
}

// Generate splits text into sentences and emits one progress event and one
// audio chunk per sentence, checking for cancellation between sentences.
func (t *ToneSynthesizer) Generate(ctx context.Context, text, voice string, emit func(Event)) error {
	sentences := SplitSentences(text)
	total := len(sentences)

	for i, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return err
		}

		emit(Event{
			Type:            EventGenerationProgress,
			Progress:        float64(i) / float64(total),
			SentenceIndex:   i,
			TotalSentences:  total,
			CurrentSentence: sentence,
		})
		emit(Event{
			Type: EventAudioChunk,
			Chunk: &audio.Chunk{
				Samples:       t.tone(sentence, i),
				Text:          sentence,
				SentenceIndex: i,
			},
		})
	}
	return nil
}

// tone renders a faded sine burst, pitched per sentence index so
// consecutive sentences are distinguishable by ear.
func (t *ToneSynthesizer) tone(sentence string, index int) []float32 {
	// Roughly 60ms per word, bounded to keep chunks reasonable.
	words := len(strings.Fields(sentence))
	seconds := 0.06 * float64(words)
	if seconds < 0.2 {
		seconds = 0.2
	}
	if seconds > 3.0 {
		seconds = 3.0
	}

	freq := 220.0 * math.Pow(2, float64(index%8)/12.0)
	n := int(seconds * float64(t.SampleRate))
	samples := make([]float32, n)
	for i := range samples {
		tm := float64(i) / float64(t.SampleRate)
		fade := 1.0
		if edge := float64(n) * 0.1; float64(i) < edge {
			fade = float64(i) / edge
		} else if float64(n-i) < edge {
			fade = float64(n-i) / edge
		}
		samples[i] = float32(0.3 * fade * math.Sin(2*math.Pi*freq*tm))
	}
	return samples
}

// SplitSentences breaks text on sentence-ending punctuation, dropping
// empty spans. A text with no terminator is one sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sentences
}

// Ensure ToneSynthesizer implements Synthesizer at compile time.
var _ Synthesizer = (*ToneSynthesizer)(nil)
