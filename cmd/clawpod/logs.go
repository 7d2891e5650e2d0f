package main

import (
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Stream gateway logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return streamLogs(cmd, false)
	},
}

var logsBrowserCmd = &cobra.Command{
	Use:   "logs-browser",
	Short: "Stream browser sidecar logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return streamLogs(cmd, true)
	},
}

func streamLogs(cmd *cobra.Command, browser bool) error {
	follow, _ := cmd.Flags().GetBool("follow")
	tail, _ := cmd.Flags().GetInt("tail")

	d, _, err := newDeployer(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	container := d.GatewayContainer()
	if browser {
		container = d.BrowserContainer()
	}
	return d.Logs(ctx, container, follow, tail)
}

func init() {
	for _, c := range []*cobra.Command{logsCmd, logsBrowserCmd} {
		c.Flags().BoolP("follow", "f", false, "Follow the log stream until interrupted")
		c.Flags().Int("tail", 0, "Show only the last N lines (0 shows everything)")
	}
}
