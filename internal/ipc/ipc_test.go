package ipc

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testSocketDir points the socket path at a per-test directory. Unix socket
// paths have a low length limit, so keep the directory shallow.
func testSocketDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
}

func waitForCount(t *testing.T, ch <-chan struct{}, want int) int {
	t.Helper()
	count := 0
	for {
		select {
		case <-ch:
			count++
			if count > want {
				t.Fatalf("got more than %d dispatches", want)
			}
		case <-time.After(300 * time.Millisecond):
			return count
		}
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got, want := SocketPath(), "/run/user/1000/whis-desktop.sock"; got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	if got, want := SocketPath(), filepath.Join(os.TempDir(), "whis-desktop.sock"); got != want {
		t.Errorf("SocketPath() without runtime dir = %q, want %q", got, want)
	}
}

func TestSendToggleDispatchesOnce(t *testing.T) {
	testSocketDir(t)

	toggled := make(chan struct{}, 8)
	l, err := Listen(func() { toggled <- struct{}{} })
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	if err := SendToggle(); err != nil {
		t.Fatalf("SendToggle: %v", err)
	}
	if got := waitForCount(t, toggled, 1); got != 1 {
		t.Errorf("got %d dispatches, want 1", got)
	}
}

func TestListenerIgnoresUnknownPayloads(t *testing.T) {
	testSocketDir(t)

	toggled := make(chan struct{}, 8)
	l, err := Listen(func() { toggled <- struct{}{} })
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	for _, payload := range []string{"TOGGLE", "toggl", "toggle-now", "quit", "\x00toggle"} {
		conn, err := net.Dial("unix", l.Path())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		if _, err := conn.Write([]byte(payload)); err != nil {
			t.Fatalf("write %q: %v", payload, err)
		}
		conn.Close()
	}

	if got := waitForCount(t, toggled, 0); got != 0 {
		t.Errorf("got %d dispatches for unknown payloads, want 0", got)
	}
}

func TestListenerTrimsTrailingNewline(t *testing.T) {
	testSocketDir(t)

	toggled := make(chan struct{}, 8)
	l, err := Listen(func() { toggled <- struct{}{} })
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	conn, err := net.Dial("unix", l.Path())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := conn.Write([]byte("toggle\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()

	if got := waitForCount(t, toggled, 1); got != 1 {
		t.Errorf("got %d dispatches, want 1", got)
	}
}

func TestSendToggleNoInstance(t *testing.T) {
	testSocketDir(t)

	if err := SendToggle(); !errors.Is(err, ErrNoRunningInstance) {
		t.Errorf("SendToggle error = %v, want ErrNoRunningInstance", err)
	}
}

func TestListenReplacesStaleSocket(t *testing.T) {
	testSocketDir(t)

	// Simulate a crashed instance: socket file exists, nothing listening.
	stale, err := net.Listen("unix", SocketPath())
	if err != nil {
		t.Fatalf("pre-bind: %v", err)
	}
	// Close without removing the file the way a crash would leave it.
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	stale.Close()
	if _, err := os.Stat(SocketPath()); err != nil {
		t.Fatalf("stale socket file missing: %v", err)
	}

	l, err := Listen(func() {})
	if err != nil {
		t.Fatalf("Listen over stale socket: %v", err)
	}
	l.Close()
}
