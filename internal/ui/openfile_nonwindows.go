//go:build !windows

package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFileInDefaultApp opens the file with the desktop's associated
// application.
func OpenFileInDefaultApp(filePath string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", filePath)
	default:
		cmd = exec.Command("xdg-open", filePath)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
