package clipboard

import "testing"

func TestFlatpakDetection(t *testing.T) {
	t.Setenv("FLATPAK_ID", "")
	if insideFlatpak() {
		t.Skip("running inside a real Flatpak sandbox")
	}

	t.Setenv("FLATPAK_ID", "app.whis.Desktop")
	if !insideFlatpak() {
		t.Error("FLATPAK_ID set but sandbox not detected")
	}

	w := NewWriter(false)
	if !w.flatpak {
		t.Error("NewWriter did not pick up sandbox detection")
	}
}
