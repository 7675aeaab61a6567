package ui

import "testing"

func TestStatusColorLookups(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	if got := styles.StatusColor("  Failed "); got != th.StatusColors["failed"] {
		t.Fatalf("StatusColor = %q, want %q", got, th.StatusColors["failed"])
	}
	if got := styles.StatusColor("Downloading 12%"); got != th.StatusColors["downloading"] {
		t.Fatalf("StatusColor progress = %q, want %q", got, th.StatusColors["downloading"])
	}
	if got := styles.StatusColor("unheard-of"); got != th.Muted {
		t.Fatalf("StatusColor unknown = %q, want muted %q", got, th.Muted)
	}
	if got := styles.WithBackground(th.Surface).StatusColor("nope"); got != th.Muted {
		t.Fatalf("WithBackground lost muted fallback: %q", got)
	}
}

func TestEveryThemeCoversHealthAndQueueStatuses(t *testing.T) {
	keys := []string{
		"pending", "queued", "downloading", "completed", "downloaded", "failed",
		"continuing", "ended", "missing", "missing-unmonitored", "unknown",
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range keys {
			if th.StatusColors[k] == "" {
				t.Errorf("theme %s has no color for %q", name, k)
			}
		}
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}
