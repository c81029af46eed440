package hotkey

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Spec
	}{
		{"Ctrl+Shift+R", Spec{Mods: []string{"Ctrl", "Shift"}, Key: "r"}},
		{"ctrl+shift+r", Spec{Mods: []string{"Ctrl", "Shift"}, Key: "r"}},
		{"Control+Alt+m", Spec{Mods: []string{"Ctrl", "Alt"}, Key: "m"}},
		{"Win+Space", Spec{Mods: []string{"Super"}, Key: "space"}},
		{"Meta+F5", Spec{Mods: []string{"Super"}, Key: "f5"}},
		{"r", Spec{Key: "r"}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "Ctrl+", "Bogus+R", "Ctrl+<Alt>m"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidShortcut) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidShortcut", in, err)
		}
	}
}

func TestSpecStringRoundTrip(t *testing.T) {
	for _, in := range []string{"Ctrl+Shift+R", "Ctrl+Alt+M", "Super+Space", "Alt+F5", "M"} {
		spec, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := spec.String(); got != in {
			t.Errorf("Parse(%q).String() = %q, want %q", in, got, in)
		}
		again, err := Parse(spec.String())
		if err != nil {
			t.Fatalf("re-Parse(%q): %v", spec.String(), err)
		}
		if !reflect.DeepEqual(again, spec) {
			t.Errorf("round trip of %q changed spec: %+v vs %+v", in, again, spec)
		}
	}
}

func TestConvertGVariantTrigger(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<Control><Alt>m", "Ctrl+Alt+M"},
		{"<Control><Shift>r", "Ctrl+Shift+R"},
		{"<Super>space", "Super+SPACE"},
		{"<Shift>F5", "Shift+F5"},
		{"m", "M"},
	}
	for _, tt := range tests {
		if got := ConvertGVariantTrigger(tt.in); got != tt.want {
			t.Errorf("ConvertGVariantTrigger(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDconfDump(t *testing.T) {
	dump := `[/]
shortcuts=[('toggle-recording', {'description': <'Toggle voice recording'>, 'shortcuts': <['<Control><Alt>m']>})]
`
	got, ok := parseDconfDump(dump)
	if !ok {
		t.Fatal("parseDconfDump found no binding")
	}
	if got != "Ctrl+Alt+M" {
		t.Errorf("parseDconfDump = %q, want %q", got, "Ctrl+Alt+M")
	}
}

func TestParseDconfDumpNoMatch(t *testing.T) {
	for name, dump := range map[string]string{
		"empty":          "",
		"other shortcut": "shortcuts=[('screenshot', {'shortcuts': <['<Control>p']>})]\n",
		"no trigger":     "shortcuts=[('toggle-recording', {'description': <'Toggle voice recording'>})]\n",
	} {
		if trigger, ok := parseDconfDump(dump); ok {
			t.Errorf("%s: parseDconfDump = %q, want no match", name, trigger)
		}
	}
}
