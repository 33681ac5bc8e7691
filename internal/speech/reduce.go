package speech

// Status is the controller's lifecycle state.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusLoadingModel Status = "loading-model"
	StatusGenerating   Status = "generating"
	StatusPlaying      Status = "playing"
	StatusPaused       Status = "paused"
	StatusError        Status = "error"
)

// signal is a transition input: a worker event, a scheduler notification,
// or a transport control.
type signal string

const (
	sigModelProgress      signal = "model-progress"
	sigModelReady         signal = "model-ready"
	sigGenerationProgress signal = "generation-progress"
	sigAudioChunk         signal = "audio-chunk"
	sigGenerationComplete signal = "generation-complete"
	sigWorkerError        signal = "worker-error"
	sigWorkerStopped      signal = "worker-stopped"
	sigPlaybackStarted    signal = "playback-started"
	sigPlaybackDrained    signal = "playback-drained"
	sigPause              signal = "pause"
	sigResume             signal = "resume"
	sigStop               signal = "stop"
)

// reduce computes the next status from the current one and a signal. It is
// a pure function; all side effects (scheduler calls, worker teardown) live
// in the controller. Unknown combinations leave the status unchanged.
func reduce(status Status, sig signal) Status {
	switch sig {
	case sigStop:
		return StatusIdle
	case sigWorkerError:
		// Error is terminal and reachable from any non-idle state.
		if status == StatusIdle {
			return StatusIdle
		}
		return StatusError
	}

	switch status {
	case StatusLoadingModel:
		if sig == sigModelReady {
			return StatusGenerating
		}
		return StatusLoadingModel

	case StatusGenerating:
		switch sig {
		case sigPlaybackStarted:
			return StatusPlaying
		case sigPlaybackDrained:
			// The stream ended without enough audio to ever start.
			return StatusIdle
		}
		return StatusGenerating

	case StatusPlaying:
		switch sig {
		case sigPause:
			return StatusPaused
		case sigPlaybackDrained:
			return StatusIdle
		}
		return StatusPlaying

	case StatusPaused:
		if sig == sigResume {
			return StatusPlaying
		}
		return StatusPaused
	}

	return status
}
