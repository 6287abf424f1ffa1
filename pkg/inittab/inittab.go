// Package inittab holds the enclave's compiled-in process table.
//
// The table is fixed at build time. Nothing here reads configuration at
// runtime; Marshal exists so image builds can audit what init will run.
package inittab

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/modoterra/vtokinit/pkg/core"
)

const (
	P11KitName   = "p11-kit"
	P11KitPath   = "p11-kit"
	ProviderPath = "/usr/lib/libvtok_p11.so"
	TokenVsock   = "vsock:port=9999"

	ProvisioningName = "p11ne-server"
	ProvisioningPath = "p11ne-server"
	ProvisioningPort = "10000"
)

// Default returns the enclave's process table in launch order. The
// provisioning server comes last: init blocks on it, and its exit
// shuts the enclave down.
func Default() []core.ManagedProcess {
	table := []core.ManagedProcess{
		{
			Name: P11KitName,
			Path: P11KitPath,
			Args: []string{
				"server",
				"-n", TokenVsock,
				"--provider", ProviderPath,
				"-f",
				"-v",
				"pkcs11:",
			},
			Env:         map[string]string{"P11_KIT_STRICT": "yes"},
			Criticality: core.NonCritical,
		},
		{
			Name:        ProvisioningName,
			Path:        ProvisioningPath,
			Args:        []string{"vsock", ProvisioningPort},
			Criticality: core.Critical,
		},
	}
	return table
}

// Table is the YAML document written by Marshal.
type Table struct {
	Processes []core.ManagedProcess `yaml:"processes"`
}

// Marshal renders a process table as YAML.
func Marshal(processes []core.ManagedProcess) ([]byte, error) {
	out, err := yaml.Marshal(Table{Processes: processes})
	if err != nil {
		return nil, fmt.Errorf("marshal process table: %w", err)
	}
	return out, nil
}
