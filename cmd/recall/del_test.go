package main

import (
	"strings"
	"testing"
)

func TestDelCmd(t *testing.T) {
	dir := newTestProject(t)
	seedProject(t, dir)

	list, err := runCommand(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	id := strings.Fields(list)[0]

	out, err := runCommand(t, "del", id)
	if err != nil {
		t.Fatalf("del: %v", err)
	}
	if !strings.Contains(out, "Deleted "+id) {
		t.Errorf("unexpected output: %q", out)
	}

	after, err := runCommand(t, "list")
	if err != nil {
		t.Fatalf("list after del: %v", err)
	}
	if strings.Contains(after, id) {
		t.Errorf("session still listed after delete: %q", after)
	}

	if _, err := runCommand(t, "del", id); err == nil {
		t.Error("deleting a missing session should fail")
	}
}
