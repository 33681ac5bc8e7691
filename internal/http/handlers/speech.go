package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/inkhorn/inkhorn/internal/speech"
)

// stateStreamInterval is how often the SSE stream samples session state.
const stateStreamInterval = 200 * time.Millisecond

// SpeechHandler handles read-aloud session endpoints. One session is
// active at a time; starting a new one replaces the old.
type SpeechHandler struct {
	controller *speech.Controller
}

// NewSpeechHandler creates a new speech handler.
func NewSpeechHandler(controller *speech.Controller) *SpeechHandler {
	return &SpeechHandler{controller: controller}
}

// Register registers the speech routes with the Huma API.
func (h *SpeechHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "startSpeechSession",
		Method:      "POST",
		Path:        "/api/v1/speech/session",
		Summary:     "Start a read-aloud session",
		Description: "Begins synthesis and playback for the given text, replacing any active session",
		Tags:        []string{"Speech"},
	}, h.StartSession)

	huma.Register(api, huma.Operation{
		OperationID: "getSpeechState",
		Method:      "GET",
		Path:        "/api/v1/speech/state",
		Summary:     "Session state snapshot",
		Tags:        []string{"Speech"},
	}, h.GetState)

	huma.Register(api, huma.Operation{
		OperationID: "pauseSpeech",
		Method:      "POST",
		Path:        "/api/v1/speech/pause",
		Summary:     "Pause playback",
		Tags:        []string{"Speech"},
	}, h.Pause)

	huma.Register(api, huma.Operation{
		OperationID: "resumeSpeech",
		Method:      "POST",
		Path:        "/api/v1/speech/resume",
		Summary:     "Resume playback",
		Tags:        []string{"Speech"},
	}, h.Resume)

	huma.Register(api, huma.Operation{
		OperationID: "stopSpeech",
		Method:      "POST",
		Path:        "/api/v1/speech/stop",
		Summary:     "Stop the session",
		Tags:        []string{"Speech"},
	}, h.Stop)

	huma.Register(api, huma.Operation{
		OperationID: "setSpeechRate",
		Method:      "PUT",
		Path:        "/api/v1/speech/rate",
		Summary:     "Set playback rate",
		Description: "Applies the rate to playing and already scheduled audio",
		Tags:        []string{"Speech"},
	}, h.SetRate)
}

// RegisterChiRoutes registers the SSE state stream. This bypasses Huma
// because SSE needs direct control over flushing.
func (h *SpeechHandler) RegisterChiRoutes(r *chi.Mux) {
	r.Get("/api/v1/speech/state/events", h.streamState)
}

// StartSessionInput is the input for starting a session.
type StartSessionInput struct {
	Body struct {
		Text  string `json:"text" doc:"Text to read aloud"`
		Voice string `json:"voice,omitempty" doc:"Voice name; empty uses the configured default"`
	}
}

// StartSessionOutput is the output for starting a session.
type StartSessionOutput struct {
	Body speech.State
}

// StartSession begins a new read-aloud session.
func (h *SpeechHandler) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input.Body.Text == "" {
		return nil, huma.Error422UnprocessableEntity("text is required")
	}

	if _, err := h.controller.Start(input.Body.Text, input.Body.Voice); err != nil {
		return nil, huma.Error500InternalServerError("failed to start session", err)
	}

	return &StartSessionOutput{Body: h.controller.State()}, nil
}

// GetStateInput is the input for reading session state.
type GetStateInput struct{}

// GetStateOutput is the output for reading session state.
type GetStateOutput struct {
	Body speech.State
}

// GetState returns the current session state snapshot.
func (h *SpeechHandler) GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error) {
	return &GetStateOutput{Body: h.controller.State()}, nil
}

// TransportInput is the shared empty input for transport controls.
type TransportInput struct{}

// TransportOutput returns the state after a transport control.
type TransportOutput struct {
	Body speech.State
}

// Pause pauses playback. Pausing outside playback is a no-op.
func (h *SpeechHandler) Pause(ctx context.Context, input *TransportInput) (*TransportOutput, error) {
	h.controller.Pause()
	return &TransportOutput{Body: h.controller.State()}, nil
}

// Resume resumes paused playback.
func (h *SpeechHandler) Resume(ctx context.Context, input *TransportInput) (*TransportOutput, error) {
	h.controller.Resume()
	return &TransportOutput{Body: h.controller.State()}, nil
}

// Stop ends the session and releases its worker and audio resources.
func (h *SpeechHandler) Stop(ctx context.Context, input *TransportInput) (*TransportOutput, error) {
	h.controller.Stop()
	return &TransportOutput{Body: h.controller.State()}, nil
}

// SetRateInput is the input for setting the playback rate.
type SetRateInput struct {
	Body struct {
		Rate float64 `json:"rate" doc:"Playback rate multiplier"`
	}
}

// SetRateOutput is the output for setting the playback rate.
type SetRateOutput struct {
	Body speech.State
}

// SetRate changes the playback rate for current and scheduled audio.
func (h *SpeechHandler) SetRate(ctx context.Context, input *SetRateInput) (*SetRateOutput, error) {
	if input.Body.Rate < 0.25 || input.Body.Rate > 4 {
		return nil, huma.Error422UnprocessableEntity("rate must be between 0.25 and 4")
	}
	h.controller.SetRate(input.Body.Rate)
	return &SetRateOutput{Body: h.controller.State()}, nil
}

// streamState emits session state snapshots as server-sent events until
// the client disconnects.
func (h *SpeechHandler) streamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(stateStreamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			payload, err := json.Marshal(h.controller.State())
			if err != nil {
				continue
			}
			// Only emit on change to keep idle streams quiet.
			if string(payload) == string(last) {
				continue
			}
			last = payload

			fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
