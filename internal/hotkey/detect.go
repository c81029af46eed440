package hotkey

import (
	"log"
	"os"
	"runtime"
	"strings"
)

// SessionType classifies the display session the process is running under.
type SessionType int

const (
	SessionOther SessionType = iota
	SessionX11
	SessionWayland
)

func (s SessionType) String() string {
	switch s {
	case SessionX11:
		return "X11"
	case SessionWayland:
		return "Wayland"
	default:
		return "Other"
	}
}

// Environment describes the desktop session. It is derived once at startup
// from environment signals and is immutable afterwards.
type Environment struct {
	Session SessionType
	Desktop string
}

// DetectEnvironment classifies the running desktop session. It never fails:
// indeterminate signals fall back to SessionOther and an "Unknown" desktop.
func DetectEnvironment() Environment {
	env := Environment{Session: SessionOther, Desktop: detectDesktop()}

	sessionType := strings.ToLower(os.Getenv("XDG_SESSION_TYPE"))

	// Wayland first: a compositor may export both WAYLAND_DISPLAY and a
	// DISPLAY pointing at XWayland.
	if sessionType == "wayland" || os.Getenv("WAYLAND_DISPLAY") != "" {
		env.Session = SessionWayland
	} else if sessionType == "x11" || os.Getenv("DISPLAY") != "" {
		env.Session = SessionX11
	} else if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		// Both have their own native hotkey path, same as X11 for our purposes.
		env.Session = SessionX11
	}

	log.Printf("Detected environment: session=%s desktop=%s", env.Session, env.Desktop)
	return env
}

func detectDesktop() string {
	if d := os.Getenv("XDG_CURRENT_DESKTOP"); d != "" {
		return d
	}
	if d := os.Getenv("DESKTOP_SESSION"); d != "" {
		return d
	}
	return "Unknown"
}
