package main

import (
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare first-run state",
	Long: `Setup creates the config root, workspace, and browser data
directories, generates a gateway token into the secrets file, and seeds
an empty gateway config. Existing files are never overwritten, so
re-running setup is always safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDeployer(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return d.Setup(ctx)
	},
}
