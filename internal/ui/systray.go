package ui

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/getlantern/systray"
)

// TrayHandlers are the callbacks the tray menu invokes. Nil entries disable
// the corresponding menu item.
type TrayHandlers struct {
	OnToggle            func()
	OnConfigureShortcut func()
	OnSetAPIKey         func()
	OnOpenSettings      func()
	OnQuit              func()
}

// Tray owns the system tray icon and menu.
type Tray struct {
	version      string
	embeddedIcon []byte
	handlers     TrayHandlers

	miStatus   *systray.MenuItem
	miBackend  *systray.MenuItem
	miShortcut *systray.MenuItem
	miConfig   *systray.MenuItem

	onReadyExtra func()
}

// NewTray creates the tray manager. Run must be called from the main
// goroutine.
func NewTray(version string, embeddedIcon []byte, handlers TrayHandlers) *Tray {
	return &Tray{version: version, embeddedIcon: embeddedIcon, handlers: handlers}
}

// Run starts the tray event loop and blocks until Quit. onReady runs once
// the tray is up, after the menu is built.
func (t *Tray) Run(onReady func()) {
	t.onReadyExtra = onReady
	systray.Run(t.onReady, t.onExit)
}

// SetStatus updates the toggle menu item label, e.g. "Start Recording",
// "Stop Recording" or "Processing...".
func (t *Tray) SetStatus(label string) {
	if t.miStatus != nil {
		t.miStatus.SetTitle(label)
	}
}

// SetProcessing disables the toggle item while a take is being transcribed.
func (t *Tray) SetProcessing(processing bool) {
	if t.miStatus == nil {
		return
	}
	if processing {
		t.miStatus.Disable()
	} else {
		t.miStatus.Enable()
	}
}

// SetBackendInfo updates the informational backend line.
func (t *Tray) SetBackendInfo(text string) {
	if t.miBackend != nil {
		t.miBackend.SetTitle(text)
	}
}

// SetShortcut updates the displayed shortcut binding.
func (t *Tray) SetShortcut(display string) {
	if t.miShortcut != nil {
		t.miShortcut.SetTitle(fmt.Sprintf("Shortcut: %s", display))
	}
}

// EnableConfigureShortcut controls whether the shortcut configuration entry
// is clickable. It stays disabled on backends without a configuration dialog.
func (t *Tray) EnableConfigureShortcut(enabled bool) {
	if t.miConfig == nil {
		return
	}
	if enabled {
		t.miConfig.Enable()
	} else {
		t.miConfig.Disable()
	}
}

func (t *Tray) onReady() {
	title := fmt.Sprintf("Whis %s", t.version)
	systray.SetTitle("Whis")
	systray.SetTooltip(title)
	if len(t.embeddedIcon) > 0 {
		systray.SetIcon(t.embeddedIcon)
	} else {
		log.Println("Warning: no embedded icon data to set for systray.")
	}

	miVersion := systray.AddMenuItem(title, "Whis voice typing")
	miVersion.Disable()
	systray.AddSeparator()

	t.miStatus = systray.AddMenuItem("Start Recording", "Toggle voice recording")
	t.miShortcut = systray.AddMenuItem("Shortcut: -", "Active toggle shortcut")
	t.miShortcut.Disable()
	t.miBackend = systray.AddMenuItem("Backend: detecting...", "Active shortcut backend")
	t.miBackend.Disable()
	systray.AddSeparator()

	t.miConfig = systray.AddMenuItem("Configure Shortcut...", "Change the toggle shortcut")
	miAPIKey := systray.AddMenuItem("Set API Key...", "Store the transcription API key")
	miSettings := systray.AddMenuItem("Open Settings File", "Open settings.json in the default editor")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit Whis")

	if t.handlers.OnToggle != nil {
		go func() {
			for range t.miStatus.ClickedCh {
				t.handlers.OnToggle()
			}
		}()
	}
	if t.handlers.OnConfigureShortcut != nil {
		go func() {
			for range t.miConfig.ClickedCh {
				t.handlers.OnConfigureShortcut()
			}
		}()
	} else {
		t.miConfig.Disable()
	}
	if t.handlers.OnSetAPIKey != nil {
		go func() {
			for range miAPIKey.ClickedCh {
				t.handlers.OnSetAPIKey()
			}
		}()
	}
	if t.handlers.OnOpenSettings != nil {
		go func() {
			for range miSettings.ClickedCh {
				t.handlers.OnOpenSettings()
			}
		}()
	}
	go func() {
		<-miQuit.ClickedCh
		if t.handlers.OnQuit != nil {
			t.handlers.OnQuit()
		}
		systray.Quit()
	}()

	if t.onReadyExtra != nil {
		t.onReadyExtra()
	}
	log.Println("Systray ready and menu configured.")
}

func (t *Tray) onExit() {
	log.Println("Systray exiting.")
}

// IsDevMode reports whether the binary is a temporary `go run` build, in
// which case automatic restart cannot work.
func IsDevMode() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.Contains(execPath, string(filepath.Separator)+"go-build") {
		return true
	}
	cleanedExecDir := filepath.Clean(filepath.Dir(execPath))
	cleanedTempDir := filepath.Clean(os.TempDir())
	return strings.HasPrefix(cleanedExecDir, cleanedTempDir)
}

// RestartApplication relaunches the current binary and exits. Backends that
// only read their shortcut binding at startup need this after the binding
// changes.
func RestartApplication() {
	if IsDevMode() {
		ShowAdminNotification(LevelWarn, "Manual Restart Needed", "Running in dev mode; stop and start the app manually.")
		return
	}
	execPath, err := os.Executable()
	if err != nil {
		ShowAdminNotification(LevelError, "Restart Error", fmt.Sprintf("Failed to get executable path: %v", err))
		return
	}

	cmd := exec.Command(execPath, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	}
	if err := cmd.Start(); err != nil {
		ShowAdminNotification(LevelError, "Restart Error", fmt.Sprintf("Failed to start new process: %v", err))
		return
	}

	log.Println("Started replacement process, exiting.")
	systray.Quit()
	os.Exit(0)
}
