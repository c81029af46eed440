package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/whisapp/whis-desktop/internal/audio"
)

// transcribeTimeout bounds a single transcription round trip.
const transcribeTimeout = 5 * time.Minute

// Recorder is the audio capture surface the dispatcher drives.
type Recorder interface {
	Start() error
	Stop() *audio.Recording
}

// Dispatcher serializes toggle requests from every trigger surface (native
// hotkey, portal activation, control socket, tray click) into state machine
// transitions. The state is read and advanced under one mutex, so
// near-simultaneous toggles resolve to exactly one transition each, in
// arrival order.
type Dispatcher struct {
	mu    sync.Mutex
	state RecordingState

	recorder   Recorder
	transcribe func(context.Context, *audio.Recording) (string, error)
	deliver    func(string) error
	onState    func(RecordingState)
	onError    func(string)
}

// NewDispatcher wires the dispatcher's collaborators. onState and onError
// may be nil.
func NewDispatcher(
	recorder Recorder,
	transcribe func(context.Context, *audio.Recording) (string, error),
	deliver func(string) error,
	onState func(RecordingState),
	onError func(string),
) *Dispatcher {
	return &Dispatcher{
		recorder:   recorder,
		transcribe: transcribe,
		deliver:    deliver,
		onState:    onState,
		onError:    onError,
	}
}

// State returns the current lifecycle position.
func (d *Dispatcher) State() RecordingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Toggle advances the state machine. Idle starts a take, Recording stops it
// and hands the audio to transcription, Processing ignores the request. Safe
// to call from any goroutine.
func (d *Dispatcher) Toggle() {
	d.mu.Lock()
	switch d.state {
	case StateProcessing:
		d.mu.Unlock()
		log.Println("Toggle ignored: transcription in progress.")
		return

	case StateIdle:
		// Acquire the capture device as part of the guarded transition, so
		// no other toggle can observe Recording before the recorder is
		// actually running. On failure the state never leaves Idle.
		if err := d.recorder.Start(); err != nil {
			d.mu.Unlock()
			log.Printf("Failed to start recording: %v", err)
			d.notifyError("Could not start recording: " + err.Error())
			return
		}
		d.state = StateRecording
		d.mu.Unlock()

		d.notifyState(StateRecording)
		log.Println("Recording started.")

	case StateRecording:
		d.state = StateProcessing
		d.mu.Unlock()

		d.notifyState(StateProcessing)
		// Stop hands over the only reference to the captured samples.
		rec := d.recorder.Stop()
		go d.process(rec)
	}
}

func (d *Dispatcher) process(rec *audio.Recording) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic during transcription: %v", r)
			d.setIdle()
		}
	}()

	if rec == nil || len(rec.Samples) == 0 {
		log.Println("Recording produced no audio.")
		d.setIdle()
		d.notifyError("Recording produced no audio.")
		return
	}
	log.Printf("Recording stopped after %s, transcribing.", rec.Duration())

	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()

	text, err := d.transcribe(ctx, rec)
	if err != nil {
		log.Printf("Transcription failed: %v", err)
		d.setIdle()
		d.notifyError("Transcription failed: " + err.Error())
		return
	}
	if text == "" {
		log.Println("Transcription returned no text.")
		d.setIdle()
		d.notifyError("No speech detected.")
		return
	}

	if err := d.deliver(text); err != nil {
		log.Printf("Failed to deliver transcript: %v", err)
		d.setIdle()
		d.notifyError("Could not copy transcript: " + err.Error())
		return
	}

	log.Printf("Transcript delivered (%d chars).", len(text))
	d.setIdle()
}

func (d *Dispatcher) setIdle() {
	d.mu.Lock()
	d.state = StateIdle
	d.mu.Unlock()
	d.notifyState(StateIdle)
}

func (d *Dispatcher) notifyState(s RecordingState) {
	if d.onState != nil {
		d.onState(s)
	}
}

func (d *Dispatcher) notifyError(msg string) {
	if d.onError != nil {
		d.onError(msg)
	}
}
