package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/modoterra/vtokinit/pkg/core"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestShowCommand(t *testing.T) {
	out := execute(t, "show")
	for _, want := range []string{
		"name: p11-kit",
		"vsock:port=9999",
		"/usr/lib/libvtok_p11.so",
		"P11_KIT_STRICT: \"yes\"",
		"name: p11ne-server",
		"criticality: critical",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	out := execute(t, "validate")
	if !strings.Contains(out, "process table is valid") {
		t.Errorf("got %q", out)
	}
}

func TestValidateTableReportsEveryProblem(t *testing.T) {
	table := []core.ManagedProcess{
		{Name: "p11ne-server", Path: "p11ne-server", Criticality: core.Critical},
		{Name: "p11-kit", Criticality: core.NonCritical},
	}

	var out, errOut bytes.Buffer
	err := validateTable(table, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for an invalid table")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed as valid, got %q", out.String())
	}
	for _, want := range []string{"path is required", "launched last"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("missing %q in:\n%s", want, errOut.String())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	if !strings.HasPrefix(out, "vtok-inittab dev (none)") {
		t.Errorf("got %q", out)
	}
}
