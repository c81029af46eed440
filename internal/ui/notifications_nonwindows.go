//go:build !windows

package ui

import (
	"os"
	"time"

	"github.com/gen2brain/beeep"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	icon := ""
	if len(n.embeddedIcon) > 0 {
		if f, err := os.CreateTemp("", "whis-icon-*.ico"); err == nil {
			if _, werr := f.Write(n.embeddedIcon); werr == nil {
				icon = f.Name()
			}
			f.Close()
			if icon != "" {
				// Give the notification daemon time to load it.
				go func(path string) {
					time.Sleep(10 * time.Second)
					os.Remove(path)
				}(icon)
			}
		}
	}
	return beeep.Notify(title, message, icon)
}
