//go:build windows

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

func nativeModifier(name string) (hotkey.Modifier, error) {
	switch name {
	case "Ctrl":
		return hotkey.ModCtrl, nil
	case "Alt":
		return hotkey.ModAlt, nil
	case "Shift":
		return hotkey.ModShift, nil
	case "Super":
		return hotkey.ModWin, nil
	}
	return 0, fmt.Errorf("%w: unsupported modifier %q", ErrInvalidShortcut, name)
}

// RegisterHotKey has no lock-modifier problem on Windows.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
