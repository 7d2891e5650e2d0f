package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// exitCodeError carries a remote command's exit code to main without the
// "Error:" prefix; the remote command already wrote its own diagnostics.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// runInGateway forwards argv to the gateway CLI inside the pod and turns a
// non-zero remote exit into the clawpod exit code.
func runInGateway(cmd *cobra.Command, argv []string) error {
	d, _, err := newDeployer(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	tty := isatty.IsTerminal(os.Stdin.Fd())
	code, err := d.Exec(ctx, argv, true, tty)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

var pairingCmd = &cobra.Command{
	Use:   "pairing",
	Short: "List pending pairing requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInGateway(cmd, []string{"pairing", "list"})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve CODE",
	Short: "Approve a pairing request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInGateway(cmd, []string{"pairing", "approve", args[0]})
	},
}

var execCmd = &cobra.Command{
	Use:   "exec ARGS...",
	Short: "Run a gateway CLI command inside the pod",
	Long: `Exec forwards its arguments verbatim to the gateway CLI inside the
running pod and exits with the remote command's exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInGateway(cmd, args)
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open a shell inside the gateway container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		code, err := d.Shell(ctx, isatty.IsTerminal(os.Stdin.Fd()))
		if err != nil {
			return err
		}
		if code != 0 {
			return &exitCodeError{code: code}
		}
		return nil
	},
}

func init() {
	// Flags after the first positional argument belong to the remote
	// command, not to clawpod.
	execCmd.Flags().SetInterspersed(false)
}
