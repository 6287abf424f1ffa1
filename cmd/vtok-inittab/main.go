// vtok-inittab prints and checks the process table compiled into
// vtok-init. It runs at image build time, never inside the enclave.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/modoterra/vtokinit/internal/buildinfo"
	"github.com/modoterra/vtokinit/pkg/core"
	"github.com/modoterra/vtokinit/pkg/inittab"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "vtok-inittab",
	Short:        "Inspect the vtok-init process table",
	Long:         "vtok-inittab prints or validates the process table compiled into vtok-init, for image audits.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the process table as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := inittab.Marshal(inittab.Default())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the process table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return validateTable(inittab.Default(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// validateTable reports each problem in table on errOut and fails if there
// are any.
func validateTable(table []core.ManagedProcess, out, errOut io.Writer) error {
	errs := inittab.Validate(table)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(errOut, "  -", e)
		}
		return errors.New("process table is invalid")
	}
	fmt.Fprintln(out, "process table is valid")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vtok-inittab %s\n", buildinfo.String())
	},
}
