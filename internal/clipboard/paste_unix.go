//go:build !windows

package clipboard

import (
	"log"
	"os/exec"
)

// simulatePlatformPaste sends the paste chord to the focused window. Each
// tool covers a different environment: xdotool for X11, wtype for Wayland,
// osascript for macOS. Failures fall through to the next tool.
func simulatePlatformPaste() {
	if err := exec.Command("xdotool", "key", "ctrl+v").Run(); err == nil {
		return
	} else {
		log.Printf("xdotool paste failed (is it installed?): %v", err)
	}

	if err := exec.Command("wtype", "-M", "ctrl", "-P", "v", "-m", "ctrl").Run(); err == nil {
		return
	} else {
		log.Printf("wtype paste failed (is it installed?): %v", err)
	}

	macScript := `tell application "System Events" to keystroke "v" using command down`
	if out, err := exec.Command("osascript", "-e", macScript).CombinedOutput(); err == nil {
		return
	} else {
		log.Printf("osascript paste failed: %v (output: %s)", err, out)
	}

	log.Println("All paste simulation methods failed; transcript remains on the clipboard.")
}
