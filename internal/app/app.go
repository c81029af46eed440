// Package app wires the shortcut backends, recorder, transcription and UI
// into the running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/whisapp/whis-desktop/internal/audio"
	"github.com/whisapp/whis-desktop/internal/clipboard"
	"github.com/whisapp/whis-desktop/internal/config"
	"github.com/whisapp/whis-desktop/internal/hotkey"
	"github.com/whisapp/whis-desktop/internal/ipc"
	"github.com/whisapp/whis-desktop/internal/resources"
	"github.com/whisapp/whis-desktop/internal/transcribe"
	"github.com/whisapp/whis-desktop/internal/ui"
)

const appName = "Whis"

// Application owns the full desktop process: one dispatcher, one shortcut
// backend, the control socket and the tray.
type Application struct {
	settings   *config.Settings
	version    string
	dispatcher *Dispatcher
	recorder   *audio.Recorder
	writer     *clipboard.Writer
	tray       *ui.Tray
	iconData   []byte

	backendInfo hotkey.Info
	native      *hotkey.NativeBackend
	portal      *hotkey.PortalBackend
	listener    *ipc.Listener

	mu            sync.Mutex
	boundShortcut string // display form of the active binding
}

// New creates the application. The audio subsystem is initialized here;
// shortcut backends come up in Run once the tray is ready.
func New(settings *config.Settings, version string) (*Application, error) {
	a := &Application{
		settings: settings,
		version:  version,
	}

	var err error
	a.iconData, err = resources.GetIcon()
	if err != nil {
		log.Printf("Warning: failed to load embedded icon: %v", err)
	}

	ui.InitGlobalNotifications(settings.UseNotifications, appName, a.iconData)

	a.recorder, err = audio.NewRecorder()
	if err != nil {
		return nil, fmt.Errorf("audio setup failed: %w", err)
	}

	a.writer = clipboard.NewWriter(true)
	a.dispatcher = NewDispatcher(
		a.recorder,
		a.transcribeTake,
		a.deliverTranscript,
		a.onStateChange,
		a.onDispatchError,
	)

	a.tray = ui.NewTray(version, a.iconData, ui.TrayHandlers{
		OnToggle:            a.Toggle,
		OnConfigureShortcut: a.onConfigureShortcut,
		OnSetAPIKey:         a.onSetAPIKey,
		OnOpenSettings:      a.onOpenSettings,
		OnQuit:              a.shutdown,
	})

	return a, nil
}

// Run brings up the shortcut backend and the control socket, then blocks in
// the tray event loop until quit.
func (a *Application) Run() {
	a.tray.Run(func() {
		a.startControlSocket()
		a.startShortcutBackend()
		a.refreshTray()
	})
}

// Toggle is the single entry point every trigger surface funnels into.
func (a *Application) Toggle() {
	a.dispatcher.Toggle()
}

// BackendInfo reports which shortcut backend is active.
func (a *Application) BackendInfo() hotkey.Info {
	return a.backendInfo
}

// BoundShortcut returns the display form of the active binding, best-effort
// for the portal backend.
func (a *Application) BoundShortcut() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boundShortcut
}

// transcribeTake builds a client per take so API key changes made while the
// app runs are picked up without restart.
func (a *Application) transcribeTake(ctx context.Context, rec *audio.Recording) (string, error) {
	client := transcribe.New(
		a.settings.ResolveAPIKey(),
		a.settings.Model,
		transcribe.WithLanguage(a.settings.Language),
	)
	return client.Transcribe(ctx, rec)
}

// deliverTranscript publishes the text to the clipboard and announces the
// result with a short preview.
func (a *Application) deliverTranscript(text string) error {
	if err := a.writer.Deliver(text); err != nil {
		return err
	}
	ui.ShowNotification("Transcription Complete", previewText(text, 120))
	return nil
}

func previewText(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

func (a *Application) startControlSocket() {
	listener, err := ipc.Listen(a.Toggle)
	if err != nil {
		// The hotkey path still works without the socket; --toggle does not.
		log.Printf("Warning: control socket unavailable: %v", err)
		ui.ShowAdminNotification(ui.LevelWarn, "Control Socket Unavailable",
			"whis-desktop --toggle will not reach this instance: "+err.Error())
		return
	}
	a.listener = listener
}

func (a *Application) startShortcutBackend() {
	a.backendInfo = hotkey.BackendInfo()
	a.setBoundShortcut(a.settings.Shortcut)

	switch a.backendInfo.Kind {
	case hotkey.KindNativeHotkey:
		a.startNativeBackend()
	case hotkey.KindPortal:
		a.startPortalBackend()
	case hotkey.KindCLIFallback:
		a.startCLIFallback(a.backendInfo.Desktop)
	}
}

func (a *Application) startNativeBackend() {
	spec, err := hotkey.Parse(a.settings.Shortcut)
	if err != nil {
		log.Printf("Configured shortcut %q is invalid: %v", a.settings.Shortcut, err)
		spec, _ = hotkey.Parse(config.DefaultShortcut)
	}

	a.native = hotkey.NewNativeBackend(a.Toggle)
	if err := a.native.Register(spec); err != nil {
		log.Printf("Failed to register hotkey %s: %v", spec, err)
		ui.ShowAdminNotification(ui.LevelWarn, "Hotkey Registration Issue",
			fmt.Sprintf("Could not register %s: %v", spec, err))
		return
	}
	a.setBoundShortcut(spec.String())
}

func (a *Application) startPortalBackend() {
	portal, err := hotkey.NewPortalBackend()
	if err != nil {
		log.Printf("Portal connection failed: %v", err)
		ui.ShowAdminNotification(ui.LevelWarn, "Shortcut Backend Issue",
			"Could not connect to the desktop portal: "+err.Error())
		return
	}
	a.portal = portal

	go func() {
		err := portal.Setup(
			a.settings.Shortcut,
			a.Toggle,
			func(binding string) {
				a.setBoundShortcut(binding)
				a.refreshTray()
			},
			func(bindErr string) {
				ui.ShowAdminNotification(ui.LevelWarn, "Shortcut Binding Issue",
					"The desktop rejected the shortcut bind: "+bindErr)
			},
		)
		if err != nil {
			log.Printf("Portal backend stopped: %v", err)
			ui.ShowAdminNotification(ui.LevelError, "Shortcut Backend Stopped",
				"Global shortcut activations are no longer received: "+err.Error())
		}
	}()
}

func (a *Application) startCLIFallback(desktop string) {
	instructions := hotkey.CLIFallbackInstructions(desktop, a.settings.Shortcut)
	log.Print(instructions)
	ui.ShowAdminNotification(ui.LevelInfo, "Manual Shortcut Setup Needed",
		"Global shortcuts are not available here. Bind 'whis-desktop --toggle' in your compositor settings.")
}

// onConfigureShortcut changes the binding. The native backend re-registers
// live; the portal backend opens the system dialog and needs a restart for
// the new binding to take effect in this process.
func (a *Application) onConfigureShortcut() {
	switch a.backendInfo.Kind {
	case hotkey.KindNativeHotkey:
		a.configureNativeShortcut()
	case hotkey.KindPortal:
		go a.configurePortalShortcut()
	default:
		ui.ShowInfoDialog(appName, hotkey.CLIFallbackInstructions(a.backendInfo.Desktop, a.settings.Shortcut))
	}
}

func (a *Application) configureNativeShortcut() {
	if a.native == nil {
		return
	}
	entered, err := ui.PromptShortcut(appName, a.BoundShortcut())
	if err != nil {
		if !errors.Is(err, ui.ErrCanceled) {
			log.Printf("Shortcut prompt failed: %v", err)
		}
		return
	}

	spec, err := hotkey.Parse(entered)
	if err != nil {
		ui.ShowAdminNotification(ui.LevelWarn, "Invalid Shortcut",
			fmt.Sprintf("%q is not a valid shortcut: %v", entered, err))
		return
	}

	if _, err := a.native.Update(spec); err != nil {
		ui.ShowAdminNotification(ui.LevelError, "Shortcut Change Failed",
			fmt.Sprintf("Could not register %s: %v", spec, err))
		return
	}

	a.settings.Shortcut = spec.String()
	if err := a.settings.Save(); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}
	a.setBoundShortcut(spec.String())
	a.refreshTray()
	ui.ShowNotification("Shortcut Updated", "Toggle shortcut is now "+spec.String())
}

func (a *Application) configurePortalShortcut() {
	if a.portal == nil {
		return
	}
	trigger, err := a.portal.ConfigureDialog()
	if err != nil {
		if errors.Is(err, hotkey.ErrUnsupportedPortalVersion) {
			ui.ShowAdminNotification(ui.LevelWarn, "Configuration Unavailable",
				"This desktop's GlobalShortcuts portal does not offer a configuration dialog. Change the binding in your desktop's keyboard settings.")
			return
		}
		ui.ShowAdminNotification(ui.LevelError, "Configuration Failed", err.Error())
		return
	}

	if trigger != "" {
		a.setBoundShortcut(trigger)
		a.refreshTray()
	}
	if ui.ConfirmRestart(appName, "The new binding takes effect after a restart. Restart now?") {
		a.shutdown()
		ui.RestartApplication()
	}
}

func (a *Application) onSetAPIKey() {
	value, err := ui.PromptAPIKey(appName)
	if err != nil {
		if !errors.Is(err, ui.ErrCanceled) {
			log.Printf("API key prompt failed: %v", err)
		}
		return
	}
	if value == "" {
		return
	}
	if err := a.settings.SetAPIKey(value); err != nil {
		ui.ShowAdminNotification(ui.LevelError, "API Key Not Saved", err.Error())
		return
	}
	ui.ShowNotification("API Key Saved", "The key is stored in the system keyring.")
}

func (a *Application) onOpenSettings() {
	if err := ui.OpenFileInDefaultApp(a.settings.Path()); err != nil {
		ui.ShowAdminNotification(ui.LevelWarn, "Error Opening File",
			fmt.Sprintf("Could not open %s: %v", a.settings.Path(), err))
	}
}

func (a *Application) onStateChange(state RecordingState) {
	switch state {
	case StateRecording:
		a.tray.SetStatus("Stop Recording")
		a.tray.SetProcessing(false)
	case StateProcessing:
		a.tray.SetStatus("Processing...")
		a.tray.SetProcessing(true)
	default:
		a.tray.SetStatus("Start Recording")
		a.tray.SetProcessing(false)
	}
}

func (a *Application) onDispatchError(msg string) {
	ui.ShowAdminNotification(ui.LevelWarn, "Recording Issue", msg)
}

func (a *Application) setBoundShortcut(display string) {
	a.mu.Lock()
	a.boundShortcut = display
	a.mu.Unlock()
}

func (a *Application) refreshTray() {
	info := a.backendInfo
	a.tray.SetBackendInfo("Backend: " + info.Kind.String())
	a.tray.SetShortcut(a.BoundShortcut())
	// The CLI fallback repurposes the configure entry to show setup
	// instructions, so it stays enabled everywhere except a portal too old
	// for the dialog.
	enabled := info.Kind != hotkey.KindPortal || info.PortalVersion >= 2
	a.tray.EnableConfigureShortcut(enabled)
}

func (a *Application) shutdown() {
	log.Println("Shutting down.")
	if a.native != nil {
		a.native.UnregisterAll()
	}
	if a.listener != nil {
		a.listener.Close()
	}
	a.recorder.Close()
}
