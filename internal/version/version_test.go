package version

import (
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func TestColoredWithoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []string{"0.1.0-dev", "1.2.3", "1.0.0-rc.1", "weird"}
	for _, v := range tests {
		withVersion(t, v)
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	withVersion(t, "1.2.3")
	if got := Colored(); got == "1.2.3" {
		t.Errorf("expected ANSI escapes, got %q", got)
	}
}

func TestCurrent(t *testing.T) {
	withVersion(t, "2.0.0")
	orig := GitCommit
	GitCommit = "abc123"
	t.Cleanup(func() { GitCommit = orig })

	info := Current()
	if info.Version != "2.0.0" || info.GitCommit != "abc123" {
		t.Errorf("Current() = %+v", info)
	}
}
