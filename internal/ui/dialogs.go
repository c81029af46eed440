package ui

import (
	"errors"

	"github.com/ncruces/zenity"
)

// ErrCanceled is returned when the user dismisses a dialog.
var ErrCanceled = errors.New("dialog canceled")

// PromptAPIKey asks for the transcription API key through a masked input
// dialog.
func PromptAPIKey(appName string) (string, error) {
	_, value, err := zenity.Password(
		zenity.Title(appName + " - Set API Key"),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		return "", err
	}
	return value, nil
}

// PromptShortcut asks for a new shortcut binding as text, e.g.
// "Ctrl+Shift+R".
func PromptShortcut(appName, current string) (string, error) {
	value, err := zenity.Entry(
		"Enter the new toggle shortcut (e.g. Ctrl+Shift+R):",
		zenity.Title(appName+" - Configure Shortcut"),
		zenity.EntryText(current),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		return "", err
	}
	return value, nil
}

// ShowInfoDialog shows a modal informational dialog.
func ShowInfoDialog(appName, message string) error {
	return zenity.Info(message, zenity.Title(appName), zenity.InfoIcon)
}

// ConfirmRestart asks whether the app should restart now to apply a change.
func ConfirmRestart(appName, reason string) bool {
	err := zenity.Question(
		reason,
		zenity.Title(appName+" - Restart Required"),
		zenity.QuestionIcon,
		zenity.OKLabel("Restart Now"),
		zenity.CancelLabel("Later"),
	)
	return err == nil
}
