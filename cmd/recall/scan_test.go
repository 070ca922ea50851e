package main

import (
	"strings"
	"testing"
)

func TestScanCmd(t *testing.T) {
	dir := newTestProject(t)
	writeSessionFile(t, dir, "s1.json",
		`{"title":"Fix the panic","messages":[{"role":"user","content":"why does it panic","timestamp":1000}]}`)

	out, err := runCommand(t, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "Added 1 session(s)") {
		t.Errorf("unexpected output: %q", out)
	}

	// A second scan over unchanged sources adds nothing.
	out, err = runCommand(t, "scan")
	if err != nil {
		t.Fatalf("scan again: %v", err)
	}
	if !strings.Contains(out, "Added 0 session(s)") {
		t.Errorf("expected idempotent scan: %q", out)
	}
}

func TestScanCmdSeedSamples(t *testing.T) {
	newTestProject(t)

	out, err := runCommand(t, "scan", "--seed-samples")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Contains(out, "Added 0 session(s)") {
		t.Errorf("expected samples to be seeded: %q", out)
	}

	// Samples stay hidden from default listings.
	out, err = runCommand(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "sample-") {
		t.Errorf("samples leaked into the default list: %q", out)
	}

	out, err = runCommand(t, "list", "--samples")
	if err != nil {
		t.Fatalf("list --samples: %v", err)
	}
	if !strings.Contains(out, "sample-") {
		t.Errorf("samples missing from --samples list: %q", out)
	}
}
