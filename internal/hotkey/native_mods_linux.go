//go:build linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

// X11 modifier mapping: Alt is typically Mod1, Super/Win is typically Mod4.
func nativeModifier(name string) (hotkey.Modifier, error) {
	switch name {
	case "Ctrl":
		return hotkey.ModCtrl, nil
	case "Alt":
		return hotkey.Mod1, nil
	case "Shift":
		return hotkey.ModShift, nil
	case "Super":
		return hotkey.Mod4, nil
	}
	return 0, fmt.Errorf("%w: unsupported modifier %q", ErrInvalidShortcut, name)
}

// CapsLock is LockMask (1<<1) on X11; NumLock is usually Mod2. XGrabKey
// matches the exact modifier state, so a binding registered without them
// would go dead whenever a lock key is lit.
const linuxCapsLockMask hotkey.Modifier = 1 << 1

func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	base := append([]hotkey.Modifier(nil), modifiers...)
	withNum := append(append([]hotkey.Modifier(nil), modifiers...), hotkey.Mod2)
	withCaps := append(append([]hotkey.Modifier(nil), modifiers...), linuxCapsLockMask)
	withBoth := append(append([]hotkey.Modifier(nil), modifiers...), hotkey.Mod2, linuxCapsLockMask)

	return [][]hotkey.Modifier{base, withNum, withCaps, withBoth}
}
