// Package audio captures microphone input and encodes it for transcription.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is the capture rate the transcription model expects.
	SampleRate = 16000
	// Channels is mono capture.
	Channels = 1
	// FramesPerBuffer is the PortAudio read size.
	FramesPerBuffer = 1024
	// minSamples pads very short takes to 200ms; the transcription API
	// rejects clips under 100ms.
	minSamples = SampleRate / 5
)

// Recorder captures audio from the default input device. A single Recorder
// is reused across takes; only one take runs at a time.
type Recorder struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []float32
	samples []float32
	running bool
	done    chan struct{}
}

// NewRecorder initializes the audio subsystem and returns a ready Recorder.
// Close must be called before process exit.
func NewRecorder() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio subsystem: %w", err)
	}
	return &Recorder{buffer: make([]float32, FramesPerBuffer)}, nil
}

// Start opens the default input stream and begins accumulating samples.
// Starting an already running recorder is a no-op.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.samples = make([]float32, 0, SampleRate*30)
	r.done = make(chan struct{})

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, r.buffer)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	r.stream = stream
	r.running = true
	go r.captureLoop()
	return nil
}

func (r *Recorder) captureLoop() {
	defer close(r.done)

	for {
		r.mu.Lock()
		running, stream := r.running, r.stream
		r.mu.Unlock()
		if !running || stream == nil {
			return
		}

		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		if r.running {
			r.samples = append(r.samples, r.buffer...)
		}
		r.mu.Unlock()
	}
}

// Stop ends the take and returns the captured audio. The returned Recording
// owns its sample buffer; the recorder keeps no reference to it. Stopping an
// idle recorder returns nil.
func (r *Recorder) Stop() *Recording {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	done := r.done
	r.mu.Unlock()

	// The capture loop polls every 10ms, so this resolves quickly.
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
	}

	stream.Stop()
	stream.Close()

	return &Recording{Samples: padSilence(samples), SampleRate: SampleRate}
}

// IsRecording reports whether a take is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Close stops any active take and tears the audio subsystem down.
func (r *Recorder) Close() {
	r.Stop()
	portaudio.Terminate()
}

func padSilence(samples []float32) []float32 {
	if len(samples) >= minSamples {
		return samples
	}
	return append(samples, make([]float32, minSamples-len(samples))...)
}
