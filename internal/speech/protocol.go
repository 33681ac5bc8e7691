// Package speech orchestrates the text-to-speech generation worker and
// feeds the audio scheduler. The controller and worker communicate only
// through typed messages, never shared state.
package speech

import "github.com/inkhorn/inkhorn/internal/audio"

// RequestType identifies a message sent to the worker.
type RequestType string

const (
	RequestInitialize RequestType = "initialize"
	RequestGenerate   RequestType = "generate"
	RequestStop       RequestType = "stop"
)

// InitOptions configures model loading.
type InitOptions struct {
	Device string `json:"device"`
	DType  string `json:"dtype"`
	Voice  string `json:"voice"`
}

// Request is a message to the worker.
type Request struct {
	Type    RequestType `json:"type"`
	Options InitOptions `json:"options,omitempty"`
	Text    string      `json:"text,omitempty"`
	Voice   string      `json:"voice,omitempty"`
}

// EventType identifies a message emitted by the worker.
type EventType string

const (
	EventModelProgress      EventType = "model-progress"
	EventModelReady         EventType = "model-ready"
	EventGenerationProgress EventType = "generation-progress"
	EventAudioChunk         EventType = "audio-chunk"
	EventGenerationComplete EventType = "generation-complete"
	EventError              EventType = "error"
	EventStopped            EventType = "stopped"
)

// Event is a message from the worker. Fields are populated per type.
type Event struct {
	Type EventType `json:"type"`

	// EventModelProgress, EventGenerationProgress.
	Progress float64 `json:"progress,omitempty"`

	// EventModelReady.
	CachedModel bool `json:"cachedModel,omitempty"`

	// EventGenerationProgress.
	SentenceIndex   int    `json:"sentenceIndex,omitempty"`
	TotalSentences  int    `json:"totalSentences,omitempty"`
	CurrentSentence string `json:"currentSentence,omitempty"`

	// EventAudioChunk.
	Chunk *audio.Chunk `json:"-"`

	// EventError.
	Err string `json:"error,omitempty"`
}
