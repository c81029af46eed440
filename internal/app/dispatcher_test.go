package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/whisapp/whis-desktop/internal/audio"
)

type fakeRecorder struct {
	mu        sync.Mutex
	running   bool
	starts    int
	stops     int
	startErr  error
	startGate chan struct{} // when set, Start blocks until it is closed
	take      *audio.Recording
}

func (f *fakeRecorder) Start() error {
	if f.startGate != nil {
		<-f.startGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeRecorder) Stop() *audio.Recording {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if !f.running {
		return nil
	}
	f.running = false
	if f.take != nil {
		return f.take
	}
	return &audio.Recording{Samples: make([]float32, audio.SampleRate), SampleRate: audio.SampleRate}
}

type harness struct {
	d          *Dispatcher
	rec        *fakeRecorder
	mu         sync.Mutex
	delivered  []string
	states     []RecordingState
	errs       []string
	transcript string
	trErr      error
	trStarted  chan struct{}
	trRelease  chan struct{}
}

func newHarness() *harness {
	h := &harness{
		rec:        &fakeRecorder{},
		transcript: "hello",
		trStarted:  make(chan struct{}, 8),
		trRelease:  make(chan struct{}),
	}
	close(h.trRelease) // transcription does not block unless a test resets this
	h.d = NewDispatcher(
		h.rec,
		func(ctx context.Context, rec *audio.Recording) (string, error) {
			h.trStarted <- struct{}{}
			<-h.trRelease
			return h.transcript, h.trErr
		},
		func(text string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.delivered = append(h.delivered, text)
			return nil
		},
		func(s RecordingState) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.states = append(h.states, s)
		},
		func(msg string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.errs = append(h.errs, msg)
		},
	)
	return h
}

func (h *harness) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.d.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("dispatcher did not return to idle, state=%s", h.d.State())
}

func TestToggleCycle(t *testing.T) {
	h := newHarness()

	h.d.Toggle()
	if got := h.d.State(); got != StateRecording {
		t.Fatalf("after first toggle state = %s, want Recording", got)
	}

	h.d.Toggle()
	h.waitIdle(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.delivered) != 1 || h.delivered[0] != "hello" {
		t.Errorf("delivered = %v, want [hello]", h.delivered)
	}
	want := []RecordingState{StateRecording, StateProcessing, StateIdle}
	if len(h.states) != len(want) {
		t.Fatalf("state transitions = %v, want %v", h.states, want)
	}
	for i := range want {
		if h.states[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, h.states[i], want[i])
		}
	}
	if h.rec.starts != 1 || h.rec.stops != 1 {
		t.Errorf("recorder starts=%d stops=%d, want 1/1", h.rec.starts, h.rec.stops)
	}
}

func TestToggleDuringProcessingIsNoOp(t *testing.T) {
	h := newHarness()
	h.trRelease = make(chan struct{}) // block transcription

	h.d.Toggle() // start
	h.d.Toggle() // stop, enters processing
	<-h.trStarted

	if got := h.d.State(); got != StateProcessing {
		t.Fatalf("state = %s, want Processing", got)
	}

	h.d.Toggle() // must be ignored
	h.d.Toggle()
	if h.rec.starts != 1 {
		t.Errorf("recorder started %d times, toggles during processing must not start takes", h.rec.starts)
	}
	if got := h.d.State(); got != StateProcessing {
		t.Errorf("state = %s after ignored toggles, want Processing", got)
	}

	close(h.trRelease)
	h.waitIdle(t)
}

func TestTranscriptionFailureReturnsToIdle(t *testing.T) {
	h := newHarness()
	h.trErr = errors.New("api unreachable")

	h.d.Toggle()
	h.d.Toggle()
	h.waitIdle(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.delivered) != 0 {
		t.Errorf("delivered %v despite transcription failure", h.delivered)
	}
	if len(h.errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", h.errs)
	}
}

func TestRecorderStartFailureReturnsToIdle(t *testing.T) {
	h := newHarness()
	h.rec.startErr = errors.New("no input device")

	h.d.Toggle()
	h.waitIdle(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", h.errs)
	}
	if len(h.states) != 0 {
		t.Errorf("state transitions = %v, want none when acquisition fails", h.states)
	}

	// A later toggle must start a fresh take.
	h.rec.startErr = nil
	h.mu.Unlock()
	h.d.Toggle()
	h.mu.Lock()
	if got := h.d.State(); got != StateRecording {
		t.Errorf("state after recovery toggle = %s, want Recording", got)
	}
}

func TestEmptyTakeReturnsToIdle(t *testing.T) {
	h := newHarness()
	h.rec.take = &audio.Recording{SampleRate: audio.SampleRate}

	h.d.Toggle()
	h.d.Toggle()
	h.waitIdle(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.delivered) != 0 {
		t.Errorf("delivered %v for an empty take", h.delivered)
	}
}

func TestToggleDuringStartWindowDoesNotOrphanCapture(t *testing.T) {
	h := newHarness()
	h.rec.startGate = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.d.Toggle() // blocks acquiring the device
	}()
	go func() {
		defer wg.Done()
		h.d.Toggle() // lands while the first is still in flight
	}()

	// Let both toggles queue up before the device comes through. Only one
	// may be inside Start; the other must wait for the transition to finish
	// rather than observe Recording early and stop a capture that has not
	// begun.
	time.Sleep(20 * time.Millisecond)
	close(h.rec.startGate)
	wg.Wait()
	h.waitIdle(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rec.starts != 1 || h.rec.stops != 1 {
		t.Errorf("starts=%d stops=%d, want exactly one matched pair", h.rec.starts, h.rec.stops)
	}
	if h.rec.running {
		t.Error("recorder still capturing after the machine settled at Idle")
	}
	if len(h.delivered) != 1 {
		t.Errorf("delivered = %v, want the one take transcribed", h.delivered)
	}
}

func TestConcurrentTogglesResolveInOrder(t *testing.T) {
	h := newHarness()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.d.Toggle()
		}()
	}
	wg.Wait()
	// Toggles that land during processing are dropped, so an odd number may
	// take effect and leave a take open. Close it before settling.
	if h.d.State() == StateRecording {
		h.d.Toggle()
	}
	h.waitIdle(t)

	// Every take that started must have been stopped exactly once; none may
	// be lost or doubled.
	if h.rec.starts != h.rec.stops {
		t.Errorf("starts=%d stops=%d, want matched pairs", h.rec.starts, h.rec.stops)
	}
	if h.rec.starts == 0 {
		t.Error("no takes started")
	}
}
