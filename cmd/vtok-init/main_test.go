package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/modoterra/vtokinit/pkg/core"
	"github.com/modoterra/vtokinit/pkg/logsink"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(logsink.New(buf).Handler())
}

func sh(name string, crit core.Criticality, script string) core.ManagedProcess {
	return core.ManagedProcess{Name: name, Path: "sh", Args: []string{"-c", script}, Criticality: crit}
}

// The critical process's status is deliberately not propagated: any exit
// is a shutdown and init leaves with 0. Changing this must be a decision.
func TestRunExitsZeroWhateverCriticalStatus(t *testing.T) {
	for _, script := range []string{"exit 0", "exit 1", "exit 42", "kill -9 $$"} {
		var buf bytes.Buffer
		code := run([]core.ManagedProcess{
			sh("token", core.NonCritical, "exit 0"),
			sh("provisioning", core.Critical, script),
		}, testLogger(&buf))
		if code != 0 {
			t.Errorf("%q: exit code got %d, want 0", script, code)
		}
		if !strings.Contains(buf.String(), "shutting down enclave") {
			t.Errorf("%q: missing shutdown record:\n%s", script, buf.String())
		}
	}
}

func TestRunSpawnFailureExitsNonZero(t *testing.T) {
	var buf bytes.Buffer
	code := run([]core.ManagedProcess{
		{Name: "p11-kit", Path: "vtok-test-no-such-binary", Criticality: core.NonCritical},
		sh("provisioning", core.Critical, "exit 0"),
	}, testLogger(&buf))
	if code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
	out := buf.String()
	if !strings.Contains(out, "enclave boot failed") {
		t.Errorf("missing failure record:\n%s", out)
	}
	if strings.Contains(out, "name=provisioning") {
		t.Errorf("provisioning server must not be launched:\n%s", out)
	}
	if n := strings.Count(out, "failed to start"); n != 1 {
		t.Errorf("spawn failure logged %d times, want once:\n%s", n, out)
	}
}

func TestRunInvalidTableExitsNonZero(t *testing.T) {
	var buf bytes.Buffer
	if code := run(nil, testLogger(&buf)); code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
}
