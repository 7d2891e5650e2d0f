package main

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/openclaw/clawpod/pkg/types"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the pod",
	Long: `Start validates every precondition (runtime present, images built,
token configured, no pod already running), provisions the host
directories, creates the pod, starts the browser sidecar, waits for its
control endpoint, and finally starts the gateway.

Nothing is mutated until validation passes. Images are never pulled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return d.Start(ctx)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop and remove the pod",
	Long: `Stop gracefully stops the pod, then removes it. Stopping a pod that
is not running succeeds; host directories and the secrets file are
always left in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return d.Stop(ctx)
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Stop the pod and start it fresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return d.Restart(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pod and container state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cfg, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		status, err := d.Status(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Pod:     %s\n", status.Name)
		fmt.Printf("State:   %s\n", status.State)
		if status.State == types.PodStateAbsent {
			return nil
		}

		if status.State == types.PodStateRunning || status.State == types.PodStatePartiallyRunning {
			reachable := "unreachable"
			if d.GatewayReachable(ctx) {
				reachable = "reachable"
			}
			fmt.Printf("Gateway: %s (%s)\n", cfg.GatewayURL(), reachable)
			fmt.Printf("Display: %s\n", cfg.DisplayURL())
		}

		if len(status.Containers) > 0 {
			fmt.Println("Containers:")
			for _, c := range status.Containers {
				state := c.State
				if c.State == "exited" {
					state = fmt.Sprintf("exited(%d)", c.ExitCode)
				}
				up := "-"
				if c.State == "running" && c.StartedAt > 0 {
					up = units.HumanDuration(time.Since(time.Unix(c.StartedAt, 0)))
				}
				fmt.Printf("  %-24s %-12s %-14s %s\n", c.Name, state, up, c.Image)
			}
		}
		return nil
	},
}

func init() {
	startCmd.Flags().Bool("require-browser-ready", false, "Fail start when the browser never reports ready")
}
