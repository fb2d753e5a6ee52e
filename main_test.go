package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", versionCmd.Use)
	}

	if versionCmd.Short != "Print version information" {
		t.Errorf("Unexpected Short: %s", versionCmd.Short)
	}
}

// TestVersionOutput verifies the version command prints the binary version.
func TestVersionOutput(t *testing.T) {
	var buf bytes.Buffer
	originalStdout := versionCmd.OutOrStdout()
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(originalStdout)

	if err := versionCmd.RunE(versionCmd, []string{}); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "librarian version ") {
		t.Errorf("Unexpected version output: %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("Version output missing commit line: %q", output)
	}
}

// TestSubcommandsRegistered verifies every top-level command is wired into
// the root.
func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{"run", "resolve", "auth", "config", "completion", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Command %q not registered on root", name)
		}
	}
}

func TestConfigSubcommandsRegistered(t *testing.T) {
	expected := []string{"show", "init", "set"}

	registered := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Config subcommand %q not registered", name)
		}
	}
}

func TestFormatList(t *testing.T) {
	if got := formatList(nil); got != "(all)" {
		t.Errorf("formatList(nil) = %q", got)
	}
	if got := formatList([]string{"KemonoFriends"}); got != "KemonoFriends" {
		t.Errorf("formatList(one) = %q", got)
	}
	if got := formatList([]string{"a", "b"}); got != "a, b" {
		t.Errorf("formatList(two) = %q", got)
	}
}
