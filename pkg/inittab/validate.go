package inittab

import (
	"fmt"
	"strings"

	"github.com/modoterra/vtokinit/pkg/core"
)

// Validate checks a process table for structural correctness.
func Validate(processes []core.ManagedProcess) []error {
	var errs []error

	if len(processes) == 0 {
		return []error{fmt.Errorf("process table must define at least one process")}
	}

	seen := make(map[string]bool, len(processes))
	critical := 0
	for i, p := range processes {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("process #%d: name is required", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("process %q: duplicate name", p.Name))
		}
		seen[p.Name] = true

		if p.Path == "" {
			errs = append(errs, fmt.Errorf("process %q: path is required", p.Name))
		}

		switch p.Criticality {
		case core.Critical:
			critical++
			if i != len(processes)-1 {
				errs = append(errs, fmt.Errorf("process %q: critical process must be launched last", p.Name))
			}
		case core.NonCritical:
		case "":
			errs = append(errs, fmt.Errorf("process %q: criticality is required", p.Name))
		default:
			errs = append(errs, fmt.Errorf("process %q: unknown criticality %q", p.Name, p.Criticality))
		}

		for k := range p.Env {
			if k == "" || strings.Contains(k, "=") {
				errs = append(errs, fmt.Errorf("process %q: invalid environment key %q", p.Name, k))
			}
		}
	}

	if critical != 1 {
		errs = append(errs, fmt.Errorf("process table must have exactly one critical process, got %d", critical))
	}

	return errs
}
