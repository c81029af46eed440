//go:build linux

package hotkey

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func activatedSignal(id string) *dbus.Signal {
	return &dbus.Signal{
		Name: portalIface + ".Activated",
		Body: []interface{}{dbus.ObjectPath("/session/1"), id, uint64(0), map[string]dbus.Variant{}},
	}
}

func TestActivationLoopDispatchesMatchingShortcuts(t *testing.T) {
	sigCh := make(chan *dbus.Signal)
	release := make(chan struct{})
	var mu sync.Mutex
	count := 0

	loopDone := make(chan struct{})
	go func() {
		runActivationLoop(sigCh, func() {
			<-release
			mu.Lock()
			count++
			mu.Unlock()
		})
		close(loopDone)
	}()

	sigCh <- activatedSignal(ShortcutID)
	sigCh <- activatedSignal("some-other-shortcut")
	sigCh <- &dbus.Signal{Name: requestIface + ".Response"}
	// The first toggle is still blocked; the stream must keep draining
	// regardless, so this send cannot hang.
	sigCh <- activatedSignal(ShortcutID)
	close(sigCh)

	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("activation loop stalled behind a slow toggle")
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("dispatched %d toggles, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConfigureDialogVersionGate(t *testing.T) {
	old := &PortalBackend{version: func() uint32 { return 1 }}
	if _, err := old.ConfigureDialog(); !errors.Is(err, ErrUnsupportedPortalVersion) {
		t.Fatalf("version 1 dialog error = %v, want ErrUnsupportedPortalVersion", err)
	}

	current := &PortalBackend{version: func() uint32 { return 2 }}
	if err := current.checkConfigureSupport(); err != nil {
		t.Fatalf("version 2 gate = %v, want nil", err)
	}
}
