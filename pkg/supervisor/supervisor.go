// Package supervisor starts the enclave's service processes and ties the
// life of init to the critical one.
//
// Run launches the table in order, then blocks until the critical process
// exits. Non-critical processes are fire-and-forget: once started they are
// never waited on, so their later failure goes unobserved. There is no
// restart, no health check, and no timeout on the wait.
package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/modoterra/vtokinit/pkg/core"
	"github.com/modoterra/vtokinit/pkg/inittab"
	"github.com/modoterra/vtokinit/pkg/logsink"
)

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("supervisor already run")

// SpawnError reports a managed process the OS could not start.
type SpawnError struct {
	Name string
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s failed to start (%s): %v", e.Name, e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Exit describes how the critical process ended. Code is -1 when the
// process was killed by a signal.
type Exit struct {
	Name string
	PID  int
	Code int
}

// Supervisor runs one process table, once.
type Supervisor struct {
	table  []core.ManagedProcess
	logger *slog.Logger
	notify Notifier

	ran   atomic.Bool
	mu    sync.Mutex
	state core.State
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger. The default writes through the process log sink.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithNotifier replaces the readiness notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Supervisor) { s.notify = n }
}

// New creates a supervisor for the given table. The table is copied.
func New(table []core.ManagedProcess, opts ...Option) (*Supervisor, error) {
	if errs := inittab.Validate(table); len(errs) > 0 {
		return nil, fmt.Errorf("invalid process table: %w", errors.Join(errs...))
	}

	s := &Supervisor{
		table:  make([]core.ManagedProcess, len(table)),
		notify: SystemdNotifier,
		state:  core.StateIdle,
	}
	for i, p := range table {
		s.table[i] = p.Clone()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logsink.Logger()
	}
	return s, nil
}

// State returns the supervisor's current state.
func (s *Supervisor) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run launches every process in table order and blocks until the critical
// process exits. A spawn failure stops the sequence: later entries are not
// launched and the *SpawnError is returned for the caller to report. Once the critical process
// exits, Run returns its Exit and a nil error whatever the exit status.
func (s *Supervisor) Run() (Exit, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Exit{}, ErrAlreadyRun
	}

	s.transition(core.StateLaunching)

	var critical *exec.Cmd
	var criticalProc core.ManagedProcess
	for _, p := range s.table {
		cmd, err := s.spawn(p)
		if err != nil {
			s.transition(core.StateTerminating)
			return Exit{}, err
		}
		if p.IsCritical() {
			critical, criticalProc = cmd, p
		}
	}

	s.transition(core.StateAwaitingCritical)
	s.notifyReady(criticalProc, critical.Process.Pid)

	return s.awaitCritical(criticalProc, critical), nil
}

func (s *Supervisor) spawn(p core.ManagedProcess) (*exec.Cmd, error) {
	cmd := exec.Command(p.Path, p.Args...)
	cmd.Env = buildEnv(os.Environ(), p.Env)
	// Children share init's own streams. Files are handed to the child
	// directly, so no copy goroutine outlives an unwaited child and Wait
	// returns as soon as the critical process exits.
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Name: p.Name, Path: p.Path, Err: err}
	}

	s.logger.Info("process started",
		"name", p.Name,
		"pid", cmd.Process.Pid,
		"command", p.CommandLine(),
		"criticality", p.Criticality,
	)
	return cmd, nil
}

func (s *Supervisor) awaitCritical(p core.ManagedProcess, cmd *exec.Cmd) Exit {
	err := cmd.Wait()

	exit := Exit{Name: p.Name, PID: cmd.Process.Pid, Code: -1}
	if cmd.ProcessState != nil {
		exit.Code = cmd.ProcessState.ExitCode()
	}

	if waitFailed(err) {
		s.logger.Error("wait for critical process failed", "name", p.Name, "err", err)
	}

	s.transition(core.StateTerminating)
	s.logger.Info("critical process exited", "name", p.Name, "pid", exit.PID, "exit_code", exit.Code)
	return exit
}

func (s *Supervisor) transition(next core.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(next) {
		panic(fmt.Sprintf("supervisor: illegal transition %s -> %s", s.state, next))
	}
	s.logger.Debug("supervisor state", "from", s.state, "to", next)
	s.state = next
}

// waitFailed reports whether err from Wait means the exit could not be
// observed, as opposed to the child exiting with a non-zero status.
func waitFailed(err error) bool {
	var exitErr *exec.ExitError
	return err != nil && !errors.As(err, &exitErr)
}

// buildEnv appends overrides to base in key order. os/exec keeps the last
// value for a duplicated key, so overrides win.
func buildEnv(base []string, overrides map[string]string) []string {
	env := append([]string(nil), base...)
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
