package core

import (
	"fmt"
	"strings"
)

// Criticality says whether a managed process's exit ends the enclave.
type Criticality string

const (
	NonCritical Criticality = "non-critical"
	Critical    Criticality = "critical"
)

// State is the supervisor's lifecycle state.
type State string

const (
	StateIdle             State = "idle"
	StateLaunching        State = "launching"
	StateAwaitingCritical State = "awaiting-critical"
	StateTerminating      State = "terminating"
)

var transitions = map[State][]State{
	StateIdle:             {StateLaunching},
	StateLaunching:        {StateAwaitingCritical, StateTerminating},
	StateAwaitingCritical: {StateTerminating},
}

// CanTransition reports whether the supervisor may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ManagedProcess describes one child service started by init.
type ManagedProcess struct {
	Name        string            `yaml:"name"`
	Path        string            `yaml:"path"` // resolved via PATH
	Args        []string          `yaml:"args,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"` // overrides on top of the inherited environment
	Criticality Criticality       `yaml:"criticality"`
}

// IsCritical reports whether the process's exit triggers shutdown.
func (p ManagedProcess) IsCritical() bool {
	return p.Criticality == Critical
}

// CommandLine renders the process as a single shell-like line for logs.
func (p ManagedProcess) CommandLine() string {
	if len(p.Args) == 0 {
		return p.Path
	}
	return fmt.Sprintf("%s %s", p.Path, strings.Join(p.Args, " "))
}

// Clone returns a deep copy so tables can be handed out without sharing
// slices or maps.
func (p ManagedProcess) Clone() ManagedProcess {
	c := p
	if p.Args != nil {
		c.Args = append([]string(nil), p.Args...)
	}
	if p.Env != nil {
		c.Env = make(map[string]string, len(p.Env))
		for k, v := range p.Env {
			c.Env[k] = v
		}
	}
	return c
}
