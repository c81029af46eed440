// Package clipboard delivers finished transcripts to the system clipboard
// and optionally pastes them into the focused application.
package clipboard

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
)

// Writer copies transcript text out. Inside a Flatpak sandbox the clipboard
// must be reached through the host, everywhere else the native clipboard is
// used directly.
type Writer struct {
	flatpak   bool
	autoPaste bool
}

// NewWriter detects the sandbox situation once at startup.
func NewWriter(autoPaste bool) *Writer {
	return &Writer{flatpak: insideFlatpak(), autoPaste: autoPaste}
}

func insideFlatpak() bool {
	if os.Getenv("FLATPAK_ID") != "" {
		return true
	}
	_, err := os.Stat("/.flatpak-info")
	return err == nil
}

// Copy places text on the system clipboard.
func (w *Writer) Copy(text string) error {
	if w.flatpak {
		return copyViaHost(text)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// copyViaHost pipes the text to wl-copy on the host side of the sandbox.
func copyViaHost(text string) error {
	cmd := exec.Command("flatpak-spawn", "--host", "wl-copy")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to reach host clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to reach host clipboard: %w", err)
	}
	if _, err := stdin.Write([]byte(text)); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("failed to write host clipboard: %w", err)
	}
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wl-copy failed: %w", err)
	}
	return nil
}

// Deliver copies the text and, when auto-paste is enabled, simulates the
// paste chord into the focused window after a short settle delay.
func (w *Writer) Deliver(text string) error {
	if err := w.Copy(text); err != nil {
		return err
	}
	if !w.autoPaste {
		return nil
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic in paste goroutine: %v", r)
			}
		}()
		// Give the clipboard and the target app a moment before pasting.
		time.Sleep(400 * time.Millisecond)
		simulatePlatformPaste()
	}()
	return nil
}
