package hotkey

import (
	"errors"
	"log"
)

// ShortcutID is the identifier the portal shortcut is registered under and
// the key the desktop configuration database is scanned for.
const ShortcutID = "toggle-recording"

// ErrBackendUnavailable is returned when a backend cannot be used on the
// current system.
var ErrBackendUnavailable = errors.New("backend not available on this system")

// ErrUnsupportedPortalVersion is returned by the portal configuration dialog
// when the GlobalShortcuts portal is older than version 2.
var ErrUnsupportedPortalVersion = errors.New("portal version does not support shortcut configuration")

// Kind identifies which global-shortcut mechanism is active. Exactly one is
// active per process lifetime; only KindNativeHotkey supports live
// re-registration, the others require a restart to change the binding.
type Kind int

const (
	KindNativeHotkey Kind = iota
	KindPortal
	KindCLIFallback
)

func (k Kind) String() string {
	switch k {
	case KindNativeHotkey:
		return "NativeHotkey"
	case KindPortal:
		return "PortalGlobalShortcuts"
	case KindCLIFallback:
		return "CLIFallback"
	}
	return "Unknown"
}

// Info describes the active backend for UI consumption.
type Info struct {
	Kind            Kind
	RequiresRestart bool
	Desktop         string
	PortalVersion   uint32
}

// Select maps a classified environment to exactly one backend kind. It is a
// pure function of its inputs: Wayland with a usable GlobalShortcuts portal
// gets the portal backend, Wayland without it steps down to the CLI fallback,
// everything else (X11, Windows, macOS, unknown) uses the native backend.
func Select(env Environment, portalAvailable bool) Kind {
	if env.Session == SessionWayland {
		if portalAvailable {
			return KindPortal
		}
		return KindCLIFallback
	}
	return KindNativeHotkey
}

// BackendInfo probes the environment and assembles the Info for the selected
// backend. The portal version is only queried when the portal backend is the
// one in use.
func BackendInfo() Info {
	env := DetectEnvironment()
	kind := Select(env, PortalAvailable())

	info := Info{
		Kind:            kind,
		RequiresRestart: kind != KindNativeHotkey,
		Desktop:         env.Desktop,
	}
	if kind == KindPortal {
		info.PortalVersion = PortalVersion()
	}

	log.Printf("Shortcut backend: %s (desktop: %s, portal v%d)", info.Kind, info.Desktop, info.PortalVersion)
	return info
}
