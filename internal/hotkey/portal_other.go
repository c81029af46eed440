//go:build !linux

package hotkey

// The GlobalShortcuts portal is Linux-only. These stubs keep the selector and
// the app layer compiling on Windows and macOS, where the native backend is
// always chosen anyway.

// PortalAvailable always reports false on non-Linux platforms.
func PortalAvailable() bool {
	return false
}

// PortalVersion always reports 0 on non-Linux platforms.
func PortalVersion() uint32 {
	return 0
}

// PortalBackend is never constructed on non-Linux platforms.
type PortalBackend struct{}

func NewPortalBackend() (*PortalBackend, error) {
	return nil, ErrBackendUnavailable
}

func (b *PortalBackend) Setup(preferredTrigger string, onToggle func(), onBinding func(string), onBindError func(string)) error {
	return ErrBackendUnavailable
}

func (b *PortalBackend) ConfigureDialog() (string, error) {
	return "", ErrBackendUnavailable
}
