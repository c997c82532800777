package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOpenReportsRedirects(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "", "open", "map/klingon", "--data-dir", dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !strings.HasPrefix(out, "courses\n") || !strings.Contains(out, "redirected:") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, "", "open", "#lesson/python/1/2", "--data-dir", dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out != "lesson/python/1/2\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "n\n", "reset", "--data-dir", dir); !errors.Is(err, errResetDeclined) {
		t.Fatalf("expected declined reset, got %v", err)
	}
	out, err := runCLI(t, "y\n", "reset", "--data-dir", dir)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "Progress reset.") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := runCLI(t, "", "reset", "--yes", "--data-dir", dir); err != nil {
		t.Fatalf("reset --yes: %v", err)
	}
}

func TestSeedThenStatus(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "", "seed", "unit_unlocked", "--data-dir", dir)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "codelingo play map/python") {
		t.Fatalf("unexpected seed output %q", out)
	}
	out, err = runCLI(t, "", "status", "--plain", "--data-dir", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "**XP:** 30") || !strings.Contains(out, "| 2 | Variables | 0/3 | open |") {
		t.Fatalf("unexpected status:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "\n": false, "": false, "nope\n": false}
	for in, want := range cases {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(in), &out, "? "); got != want {
			t.Fatalf("confirm(%q) = %v, want %v", in, got, want)
		}
	}
}
