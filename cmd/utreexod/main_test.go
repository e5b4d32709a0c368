package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunDryRunPrintsConfigAndExitsZero(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir, "--network", "regtest"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), `"network": "regtest"`) {
		t.Fatalf("expected printed config to mention the network, got %s", out.String())
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir, "--network", "not-a-network"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if errOut.Len() == 0 {
		t.Fatal("expected an error message on stderr")
	}
}

func TestRunOnFreshDatadirWithoutGenesisHeaderFails(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--datadir", dir, "--network", "regtest"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2, stderr=%s", code, errOut.String())
	}
	if !strings.Contains(errOut.String(), "genesis-header") {
		t.Fatalf("expected the genesis-header requirement to be mentioned, got %s", errOut.String())
	}
}

func TestMultiStringFlagSetAppends(t *testing.T) {
	var m multiStringFlag
	if err := m.Set("a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set("b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := m.String(); got != "a,b" {
		t.Fatalf("string=%q, want %q", got, "a,b")
	}
}
