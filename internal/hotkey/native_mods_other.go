//go:build !windows && !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

// Native hotkeys are not wired up on this OS; the project primarily targets
// Linux and Windows.
func nativeModifier(name string) (hotkey.Modifier, error) {
	return 0, fmt.Errorf("native hotkeys are not supported on this OS")
}

func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
