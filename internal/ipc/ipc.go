// Package ipc implements the local control socket. A second invocation of the
// binary with --toggle connects to it and asks the running instance to toggle
// recording, which is also how compositor-level shortcut bindings reach us
// when no global-shortcut backend is available.
package ipc

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// socketName is the file name of the control socket inside the runtime dir.
const socketName = "whis-desktop.sock"

// togglePayload is the only message the listener acts on. Anything else read
// from a connection is ignored.
const togglePayload = "toggle"

// ErrNoRunningInstance is returned by SendToggle when no listener is bound to
// the control socket.
var ErrNoRunningInstance = errors.New("no running instance")

// SocketPath returns the control socket location: the user runtime directory
// when available, /tmp otherwise.
func SocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, socketName)
}

// SendToggle connects to the control socket of a running instance and sends
// it the toggle command. Returns ErrNoRunningInstance when nothing is
// listening.
func SendToggle() error {
	conn, err := net.Dial("unix", SocketPath())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoRunningInstance, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(togglePayload)); err != nil {
		return fmt.Errorf("failed to send toggle command: %w", err)
	}
	return nil
}

// Listener owns the bound control socket and dispatches toggle commands.
type Listener struct {
	ln       net.Listener
	path     string
	onToggle func()
}

// Listen binds the control socket and starts accepting connections. A stale
// socket file from a crashed instance is removed before binding. Each
// accepted connection is read once; the payload must match the toggle command
// exactly after trimming trailing whitespace.
func Listen(onToggle func()) (*Listener, error) {
	path := SocketPath()

	// A previous instance that crashed leaves the socket file behind.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket %s: %w", path, err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to bind control socket %s: %w", path, err)
	}

	l := &Listener{ln: ln, path: path, onToggle: onToggle}
	go l.acceptLoop()
	log.Printf("Control socket listening at %s", path)
	return l, nil
}

// Path returns the socket file the listener is bound to.
func (l *Listener) Path() string {
	return l.path
}

// Close shuts the accept loop down and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	os.Remove(l.path)
	return err
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			// Closed listener ends the loop; anything else is transient.
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("Control socket accept error: %v", err)
			continue
		}
		l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()

	// The command fits well within one small read; anything longer is not ours.
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		log.Printf("Control socket read error: %v", err)
		return
	}

	payload := strings.TrimSpace(string(buf[:n]))
	if payload != togglePayload {
		log.Printf("Control socket ignoring unknown command: %q", payload)
		return
	}

	// Dispatch off the accept path so a slow toggle never blocks new
	// connections.
	go l.onToggle()
}
