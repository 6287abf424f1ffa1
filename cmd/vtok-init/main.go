// vtok-init is PID 1 of the p11ne enclave. It starts the p11-kit token
// server and the provisioning server, then waits on the provisioning
// server. When that exits, init exits and the enclave goes down with it.
//
// It takes no arguments; the process table is compiled in.
package main

import (
	"log/slog"
	"os"

	"github.com/modoterra/vtokinit/internal/buildinfo"
	"github.com/modoterra/vtokinit/pkg/core"
	"github.com/modoterra/vtokinit/pkg/inittab"
	"github.com/modoterra/vtokinit/pkg/logsink"
	"github.com/modoterra/vtokinit/pkg/supervisor"
)

func main() {
	logsink.Init()
	logger := logsink.Logger()

	logger.Info("starting vtok-init", "version", buildinfo.Version, "commit", buildinfo.Commit)
	if code := run(inittab.Default(), logger); code != 0 {
		os.Exit(code)
	}
}

// run supervises table and returns init's exit code: 1 if a process could
// not be started, otherwise 0. The critical process's own exit status is
// logged but not propagated.
func run(table []core.ManagedProcess, logger *slog.Logger) int {
	sup, err := supervisor.New(table, supervisor.WithLogger(logger))
	if err != nil {
		logger.Error("invalid process table", "err", err)
		return 1
	}

	exit, err := sup.Run()
	if err != nil {
		logger.Error("enclave boot failed", "err", err)
		return 1
	}

	logger.Info("shutting down enclave", "name", exit.Name, "exit_code", exit.Code)
	return 0
}
