package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidShortcut is returned when a shortcut string cannot be parsed
// into a modifier chord plus terminal key.
var ErrInvalidShortcut = errors.New("invalid shortcut")

// Spec is a shortcut chord in its storage form: an ordered set of modifier
// tokens plus one terminal key. The display string ("Ctrl+Shift+R") and the
// backend-native representation both derive from it.
type Spec struct {
	Mods []string // canonical names: Ctrl, Alt, Shift, Super
	Key  string   // lower-case key token, e.g. "r", "f5", "space"
}

// canonicalMod maps the accepted modifier spellings to their canonical name.
var canonicalMod = map[string]string{
	"ctrl":    "Ctrl",
	"control": "Ctrl",
	"alt":     "Alt",
	"shift":   "Shift",
	"super":   "Super",
	"win":     "Super",
	"cmd":     "Super",
	"meta":    "Super",
}

// Parse converts a shortcut string like "Ctrl+Shift+R" into a Spec.
// Modifier order is preserved; the last token is the terminal key.
func Parse(s string) (Spec, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidShortcut, s)
	}

	var spec Spec
	for _, part := range parts[:len(parts)-1] {
		name, ok := canonicalMod[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return Spec{}, fmt.Errorf("%w: unsupported modifier %q", ErrInvalidShortcut, part)
		}
		spec.Mods = append(spec.Mods, name)
	}

	spec.Key = strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if spec.Key == "" || strings.ContainsAny(spec.Key, " <>") {
		return Spec{}, fmt.Errorf("%w: bad key token %q", ErrInvalidShortcut, parts[len(parts)-1])
	}

	return spec, nil
}

// String renders the spec in display form: modifiers joined with "+",
// terminal key upper-cased ("Ctrl+Alt+M"). Parse(spec.String()) yields the
// same modifier set and key, so the two representations round-trip.
func (s Spec) String() string {
	var b strings.Builder
	for _, m := range s.Mods {
		b.WriteString(m)
		b.WriteString("+")
	}
	b.WriteString(strings.ToUpper(s.Key))
	return b.String()
}

// ConvertGVariantTrigger converts a GVariant-encoded binding like
// "<Control><Alt>m" to the display form "Ctrl+Alt+M". Each bracketed modifier
// becomes its display name plus "+", and only the trailing key segment after
// the last "+" is upper-cased.
func ConvertGVariantTrigger(raw string) string {
	converted := strings.NewReplacer(
		"<Control>", "Ctrl+",
		"<Alt>", "Alt+",
		"<Shift>", "Shift+",
		"<Super>", "Super+",
	).Replace(raw)

	if i := strings.LastIndex(converted, "+"); i >= 0 {
		return converted[:i+1] + strings.ToUpper(converted[i+1:])
	}
	return strings.ToUpper(converted)
}
