package supervisor

import (
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/modoterra/vtokinit/pkg/core"
)

// Notifier delivers a service-manager state string such as "READY=1".
type Notifier func(state string) error

// SystemdNotifier sends state over $NOTIFY_SOCKET. Without the variable,
// as inside the enclave, it does nothing.
func SystemdNotifier(state string) error {
	_, err := daemon.SdNotify(false, state)
	return err
}

func (s *Supervisor) notifyReady(p core.ManagedProcess, pid int) {
	if s.notify == nil {
		return
	}
	state := fmt.Sprintf("%s\nSTATUS=awaiting %s (pid %d)", daemon.SdNotifyReady, p.Name, pid)
	if err := s.notify(state); err != nil {
		s.logger.Warn("readiness notification failed", "err", err)
	}
}
