package hotkey

import (
	"os/exec"
	"strings"
)

// GNOME's settings daemon persists portal shortcut bindings here.
const dconfShortcutsPath = "/org/gnome/settings-daemon/global-shortcuts/"

// ReadPortalShortcutFromDconf scrapes the desktop configuration database for
// a previously saved binding under our shortcut identifier. It is best-effort
// display data: the portal's own bind response stays authoritative when both
// are available. Returns false when dconf is missing, the dump fails, or no
// matching entry exists.
func ReadPortalShortcutFromDconf() (string, bool) {
	out, err := exec.Command("dconf", "dump", dconfShortcutsPath).Output()
	if err != nil {
		return "", false
	}
	return parseDconfDump(string(out))
}

// parseDconfDump scans a dconf dump line-by-line for an entry carrying both
// the shortcut identifier and a "shortcuts" key, then extracts the bound
// trigger from the bracketed single-quoted list literal, e.g.
//
//	shortcuts=[('toggle-recording', {'shortcuts': <['<Control><Alt>m']>, ...})]
func parseDconfDump(dump string) (string, bool) {
	for _, line := range strings.Split(dump, "\n") {
		if !strings.Contains(line, ShortcutID) || !strings.Contains(line, "shortcuts") {
			continue
		}
		start := strings.Index(line, "<['")
		if start < 0 {
			continue
		}
		rest := line[start+3:]
		end := strings.Index(rest, "']>")
		if end < 0 {
			continue
		}
		return ConvertGVariantTrigger(rest[:end]), true
	}
	return "", false
}
