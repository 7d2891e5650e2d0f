package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/openclaw/clawpod/pkg/config"
	"github.com/openclaw/clawpod/pkg/deploy"
	"github.com/openclaw/clawpod/pkg/log"
	"github.com/openclaw/clawpod/pkg/runtime/podman"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clawpod",
	Short: "Clawpod - OpenClaw pod lifecycle manager",
	Long: `Clawpod stands up and manages the OpenClaw pod: the gateway and its
browser sidecar running together on a local container runtime.

Containers run hardened (read-only root, no capabilities, no privilege
escalation) and the gateway port stays on loopback unless explicitly
opened. Images are never pulled; build them locally first.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Clawpod version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config-dir", "", "Config root (default ~/.openclaw)")
	rootCmd.PersistentFlags().String("pod", "", "Pod name (default openclaw)")
	rootCmd.PersistentFlags().String("env-file", "", "Secrets file (default <config-dir>/.env)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Force JSON log output even on a terminal")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(logsBrowserCmd)
	rootCmd.AddCommand(pairingCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(shellCmd)
}

// loadConfig resolves the configuration from flags, environment, and files,
// then initializes logging to match it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var o config.Overrides
	o.ConfigDir, _ = cmd.Flags().GetString("config-dir")
	o.PodName, _ = cmd.Flags().GetString("pod")
	o.EnvFile, _ = cmd.Flags().GetString("env-file")
	o.LogLevel, _ = cmd.Flags().GetString("log-level")
	if cmd.Flags().Changed("log-json") {
		v, _ := cmd.Flags().GetBool("log-json")
		o.LogJSON = &v
	}
	if cmd.Flags().Changed("require-browser-ready") {
		v, _ := cmd.Flags().GetBool("require-browser-ready")
		o.RequireBrowserReady = &v
	}

	cfg, err := config.Load(o)
	if err != nil {
		return config.Config{}, err
	}

	log.Init(log.Config{
		Level:  log.Level(cfg.LogLevel),
		Pretty: !cfg.LogJSON && isatty.IsTerminal(os.Stderr.Fd()),
	})
	return cfg, nil
}

// newDeployer wires a deployer against the local podman runtime.
func newDeployer(cmd *cobra.Command) (*deploy.Deployer, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	return deploy.NewDeployer(cfg, podman.New()), cfg, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
