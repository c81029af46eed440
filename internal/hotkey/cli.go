package hotkey

import (
	"fmt"
	"strings"
)

// CLIFallbackInstructions renders per-compositor guidance for wiring the
// toggle command to a shortcut when neither other backend can auto-register
// one. The user binds `whis-desktop --toggle` in their compositor config.
func CLIFallbackInstructions(desktop, shortcut string) string {
	var b strings.Builder
	b.WriteString("=== Global Shortcuts Not Available ===\n")
	fmt.Fprintf(&b, "Desktop: %s\n\n", desktop)
	b.WriteString("To use a keyboard shortcut, configure your compositor:\n\n")

	switch d := strings.ToLower(desktop); {
	case strings.Contains(d, "gnome"):
		b.WriteString("GNOME: Settings > Keyboard > Custom Shortcuts\n")
		b.WriteString("  Name: Whis Toggle Recording\n")
		b.WriteString("  Command: whis-desktop --toggle\n")
		fmt.Fprintf(&b, "  Shortcut: %s\n", shortcut)
	case strings.Contains(d, "kde"), strings.Contains(d, "plasma"):
		b.WriteString("KDE: System Settings > Shortcuts > Custom Shortcuts\n")
		b.WriteString("  Command: whis-desktop --toggle\n")
	case strings.Contains(d, "sway"):
		b.WriteString("Sway: Add to ~/.config/sway/config:\n")
		fmt.Fprintf(&b, "  bindsym %s exec whis-desktop --toggle\n", strings.ToLower(shortcut))
	case strings.Contains(d, "hyprland"):
		b.WriteString("Hyprland: Add to ~/.config/hypr/hyprland.conf:\n")
		fmt.Fprintf(&b, "  bind = %s, exec, whis-desktop --toggle\n", strings.ReplaceAll(shortcut, "+", ", "))
	default:
		b.WriteString("Configure your compositor to run: whis-desktop --toggle\n")
	}

	return b.String()
}
