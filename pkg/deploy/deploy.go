package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/rs/zerolog"

	"github.com/openclaw/clawpod/pkg/config"
	"github.com/openclaw/clawpod/pkg/envfile"
	"github.com/openclaw/clawpod/pkg/log"
	"github.com/openclaw/clawpod/pkg/probe"
	"github.com/openclaw/clawpod/pkg/runtime"
	"github.com/openclaw/clawpod/pkg/types"
	"github.com/openclaw/clawpod/pkg/volume"
)

// Phase identifies a step of the start sequence. Phases appear in log
// fields and in wrapped errors so a failure names where it happened.
type Phase string

const (
	PhaseValidating      Phase = "validating"
	PhaseProvisioning    Phase = "provisioning"
	PhaseCreatingPod     Phase = "creating-pod"
	PhaseStartingBrowser Phase = "starting-browser"
	PhaseAwaitingBrowser Phase = "awaiting-browser"
	PhaseStartingGateway Phase = "starting-gateway"
)

// Container-side paths. The images create the openclaw and browser users
// with these homes; the bind mounts land on top of them.
const (
	gatewayHome      = "/home/openclaw"
	gatewayConfigDir = "/home/openclaw/.openclaw"
	gatewayWorkspace = "/home/openclaw/workspace"
	browserHome      = "/home/browser"

	gatewayEntrypoint = "openclaw"

	// gatewayConfigFile is the gateway's own config inside ConfigDir. Its
	// contents are the gateway's business; setup only seeds an empty object.
	gatewayConfigFile = "openclaw.json"
)

// Deployer drives the pod lifecycle through a runtime adapter. All
// decisions about container layout, environment, and ordering live here;
// the adapter only executes them.
type Deployer struct {
	cfg    config.Config
	rt     runtime.Runtime
	prov   *volume.Provisioner
	out    io.Writer
	logger zerolog.Logger
}

// NewDeployer creates a deployer for the given configuration.
func NewDeployer(cfg config.Config, rt runtime.Runtime) *Deployer {
	return &Deployer{
		cfg:    cfg,
		rt:     rt,
		prov:   volume.NewProvisioner(),
		out:    os.Stdout,
		logger: log.WithComponent("deploy"),
	}
}

// WithOutput redirects human-facing progress output.
func (d *Deployer) WithOutput(w io.Writer) *Deployer {
	d.out = w
	return d
}

// GatewayContainer returns the name of the primary container.
func (d *Deployer) GatewayContainer() string {
	return types.GatewayContainerName(d.cfg.PodName)
}

// BrowserContainer returns the name of the sidecar container.
func (d *Deployer) BrowserContainer() string {
	return types.BrowserContainerName(d.cfg.PodName)
}

// Start stands up the pod: validate, provision host directories, create
// the pod, start the browser sidecar, wait for its control endpoint, then
// start the gateway. Validation completes before the first mutation; a
// failure after pod creation leaves the partial pod behind for stop to
// clean up.
func (d *Deployer) Start(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	logger := d.logger.With().Str("run", runID).Str("pod", d.cfg.PodName).Logger()

	if err := d.validate(ctx, logger); err != nil {
		return err
	}
	if err := d.provision(logger); err != nil {
		return err
	}

	logger.Info().Str("phase", string(PhaseCreatingPod)).Msg("creating pod")
	if err := d.rt.CreatePod(ctx, d.podSpec()); err != nil {
		return fmt.Errorf("%s: %w", PhaseCreatingPod, err)
	}

	logger.Info().Str("phase", string(PhaseStartingBrowser)).Str("container", d.BrowserContainer()).Msg("starting browser sidecar")
	if err := d.rt.RunContainer(ctx, d.cfg.PodName, d.browserSpec()); err != nil {
		return fmt.Errorf("%s: %w", PhaseStartingBrowser, err)
	}

	if err := d.awaitBrowser(ctx, logger); err != nil {
		return err
	}

	logger.Info().Str("phase", string(PhaseStartingGateway)).Str("container", d.GatewayContainer()).Msg("starting gateway")
	if err := d.rt.RunContainer(ctx, d.cfg.PodName, d.gatewaySpec()); err != nil {
		return fmt.Errorf("%s: %w", PhaseStartingGateway, err)
	}

	fmt.Fprintf(d.out, "Pod %s started\n", d.cfg.PodName)
	fmt.Fprintf(d.out, "  Gateway: %s\n", d.cfg.GatewayURL())
	fmt.Fprintf(d.out, "  Display: %s\n", d.cfg.DisplayURL())
	return nil
}

// validate checks every precondition. The token check runs first so a
// missing secret fails before the runtime is touched at all.
func (d *Deployer) validate(ctx context.Context, logger zerolog.Logger) error {
	logger.Info().Str("phase", string(PhaseValidating)).Msg("validating preconditions")

	if d.cfg.GatewayToken() == "" {
		return fmt.Errorf("%s: %s is not set; run setup or add it to %s",
			PhaseValidating, config.EnvKeyGatewayToken, d.cfg.EnvFile)
	}

	if err := d.rt.Available(ctx); err != nil {
		return fmt.Errorf("%s: %w", PhaseValidating, err)
	}

	for _, img := range []struct{ ref, hint string }{
		{d.cfg.GatewayImage, fmt.Sprintf("podman build -t %s -f Containerfile.gateway .", d.cfg.GatewayImage)},
		{d.cfg.BrowserImage, fmt.Sprintf("podman build -t %s -f Containerfile.browser .", d.cfg.BrowserImage)},
	} {
		exists, err := d.rt.ImageExists(ctx, img.ref)
		if err != nil {
			return fmt.Errorf("%s: %w", PhaseValidating, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", PhaseValidating, &runtime.ImageNotFoundError{Image: img.ref, BuildHint: img.hint})
		}
	}

	exists, err := d.rt.PodExists(ctx, d.cfg.PodName)
	if err != nil {
		return fmt.Errorf("%s: %w", PhaseValidating, err)
	}
	if exists {
		return fmt.Errorf("%s: %w: %s (stop it first)", PhaseValidating, runtime.ErrPodExists, d.cfg.PodName)
	}
	return nil
}

// provision ensures the host directories exist with owner-only permissions.
// Creation failure aborts the start; a chmod that could not tighten an
// existing directory is only a warning.
func (d *Deployer) provision(logger zerolog.Logger) error {
	logger.Info().Str("phase", string(PhaseProvisioning)).Msg("provisioning host directories")
	res, err := d.prov.Ensure(d.hostDirs())
	if err != nil {
		return fmt.Errorf("%s: %w", PhaseProvisioning, err)
	}
	for _, dir := range res.Created {
		logger.Debug().Str("dir", dir).Msg("created host directory")
	}
	for _, w := range res.Warnings {
		logger.Warn().Str("phase", string(PhaseProvisioning)).Msg(w)
	}
	return nil
}

func (d *Deployer) hostDirs() []string {
	return []string{d.cfg.ConfigDir, d.cfg.WorkspaceDir, d.cfg.BrowserDataDir}
}

// awaitBrowser polls the DevTools endpoint from inside the sidecar. An
// exhausted budget is a warning by default: the gateway reconnects on its
// own once the browser settles. RequireBrowserReady turns it fatal.
func (d *Deployer) awaitBrowser(ctx context.Context, logger zerolog.Logger) error {
	logger.Info().
		Str("phase", string(PhaseAwaitingBrowser)).
		Str("url", d.cfg.BrowserControlURL).
		Msg("waiting for browser control endpoint")

	checker := probe.NewExecChecker(d.rt, d.BrowserContainer(), d.cfg.BrowserControlURL)
	res := probe.Wait(ctx, checker, probe.Config{
		Interval: d.cfg.ProbeInterval,
		Attempts: d.cfg.ProbeAttempts,
	})
	if res.Ready {
		logger.Info().Int("attempts", res.Attempts).Dur("elapsed", res.Elapsed).Msg("browser ready")
		return nil
	}
	if d.cfg.RequireBrowserReady {
		return fmt.Errorf("%s: browser not ready after %d attempts in %s: %s",
			PhaseAwaitingBrowser, res.Attempts, res.Elapsed.Round(time.Millisecond), res.LastError)
	}
	logger.Warn().
		Int("attempts", res.Attempts).
		Dur("elapsed", res.Elapsed).
		Str("last_error", res.LastError).
		Msg("browser readiness timed out, starting gateway anyway")
	return nil
}

// podSpec declares the pod and its published ports. The gateway port stays
// on loopback unless the operator opted into all interfaces; the display
// port is published on all interfaces for LAN viewers.
func (d *Deployer) podSpec() types.PodSpec {
	gateway := types.PortBinding{
		HostIP:        "127.0.0.1",
		HostPort:      d.cfg.GatewayPort,
		ContainerPort: d.cfg.GatewayPort,
	}
	if d.cfg.GatewayBind == config.BindAll {
		gateway.HostIP = ""
	}
	return types.PodSpec{
		Name: d.cfg.PodName,
		Ports: []types.PortBinding{
			gateway,
			{HostPort: d.cfg.DisplayPort, ContainerPort: d.cfg.DisplayPort},
		},
		Labels: map[string]string{"managed-by": "clawpod"},
	}
}

// gatewaySpec builds the primary container. Its environment is the secrets
// file's keys at their merged values (calling environment wins per key),
// the token, and the computed wiring for reaching the sidecar.
func (d *Deployer) gatewaySpec() types.ContainerSpec {
	env := make(map[string]string, len(d.cfg.FileEnv)+5)
	for k := range d.cfg.FileEnv {
		env[k] = d.cfg.Env[k]
	}
	env[config.EnvKeyGatewayToken] = d.cfg.GatewayToken()
	env["HOME"] = gatewayHome
	env["OPENCLAW_GATEWAY_PORT"] = strconv.Itoa(d.cfg.GatewayPort)
	env["OPENCLAW_GATEWAY_BIND"] = string(d.cfg.GatewayBind)
	env["OPENCLAW_BROWSER_CONTROL_URL"] = d.cfg.BrowserControlURL

	return types.ContainerSpec{
		Name:  d.GatewayContainer(),
		Image: d.cfg.GatewayImage,
		Env:   env,
		Mounts: []specs.Mount{
			types.BindMount(d.cfg.ConfigDir, gatewayConfigDir, false),
			types.BindMount(d.cfg.WorkspaceDir, gatewayWorkspace, false),
			types.TmpfsMount("/tmp", d.tmpfsSize()),
		},
	}
}

// browserSpec builds the sidecar. Its home lives on the persistent
// browser-data mount; the startup command creates the profile directory
// there before handing off, so a fresh volume works on first boot.
func (d *Deployer) browserSpec() types.ContainerSpec {
	return types.ContainerSpec{
		Name:    d.BrowserContainer(),
		Image:   d.cfg.BrowserImage,
		Command: []string{"sh", "-lc", `mkdir -p "$HOME/profile" && exec start-browser`},
		Env: map[string]string{
			"HOME":                  browserHome,
			"OPENCLAW_DISPLAY_PORT": strconv.Itoa(d.cfg.DisplayPort),
		},
		Mounts: []specs.Mount{
			types.BindMount(d.cfg.BrowserDataDir, browserHome, false),
			types.TmpfsMount("/tmp", d.tmpfsSize()),
			types.TmpfsMount("/run", d.tmpfsSize()),
		},
	}
}

// tmpfsSize canonicalizes the configured size to bytes so the runtime sees
// the same value however the operator spelled it.
func (d *Deployer) tmpfsSize() string {
	bytes, err := units.RAMInBytes(d.cfg.TmpfsSize)
	if err != nil {
		// Load validated the string; an unvalidated Config falls back.
		return config.DefaultTmpfsSize
	}
	return strconv.FormatInt(bytes, 10)
}

// Stop tears the pod down. An absent pod is success. A failed graceful
// stop still attempts removal; the verb fails only if the pod is still
// present afterwards.
func (d *Deployer) Stop(ctx context.Context) error {
	logger := d.logger.With().Str("pod", d.cfg.PodName).Logger()

	exists, err := d.rt.PodExists(ctx, d.cfg.PodName)
	if err != nil {
		return fmt.Errorf("failed to check pod: %w", err)
	}
	if !exists {
		fmt.Fprintf(d.out, "Pod %s is not running\n", d.cfg.PodName)
		return nil
	}

	logger.Info().Msg("stopping pod")
	if err := d.rt.StopPod(ctx, d.cfg.PodName); err != nil {
		logger.Warn().Err(err).Msg("graceful stop failed, removing anyway")
	}
	if err := d.rt.RemovePod(ctx, d.cfg.PodName); err != nil {
		logger.Warn().Err(err).Msg("pod removal reported an error")
	}

	exists, err = d.rt.PodExists(ctx, d.cfg.PodName)
	if err != nil {
		return fmt.Errorf("failed to verify teardown: %w", err)
	}
	if exists {
		return fmt.Errorf("pod %s is still present after stop and remove", d.cfg.PodName)
	}
	fmt.Fprintf(d.out, "Pod %s stopped\n", d.cfg.PodName)
	return nil
}

// Restart stops then starts. The start is attempted even when stop fails
// so a half-torn-down pod does not wedge recovery; start's own validation
// rejects whatever stop left behind.
func (d *Deployer) Restart(ctx context.Context) error {
	if err := d.Stop(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("stop failed during restart, attempting start anyway")
	}
	return d.Start(ctx)
}

// Status reports the pod state and its containers, read fresh from the
// runtime on every call.
func (d *Deployer) Status(ctx context.Context) (types.PodStatus, error) {
	state, err := d.rt.PodState(ctx, d.cfg.PodName)
	if err != nil {
		return types.PodStatus{}, fmt.Errorf("failed to query pod state: %w", err)
	}
	status := types.PodStatus{Name: d.cfg.PodName, State: state}
	if state == types.PodStateAbsent {
		return status, nil
	}
	containers, err := d.rt.ListContainers(ctx, d.cfg.PodName)
	if err != nil {
		return types.PodStatus{}, fmt.Errorf("failed to list containers: %w", err)
	}
	status.Containers = containers
	return status, nil
}

// GatewayReachable reports whether the gateway answers HTTP on its
// published port.
func (d *Deployer) GatewayReachable(ctx context.Context) bool {
	return probe.NewHTTPChecker(d.cfg.GatewayURL()).Check(ctx).Healthy
}

// Logs streams one container's output to the deployer's writer until the
// stream ends or ctx is cancelled.
func (d *Deployer) Logs(ctx context.Context, container string, follow bool, tail int) error {
	return d.rt.StreamLogs(ctx, container, runtime.LogOptions{Follow: follow, Tail: tail}, d.out)
}

// Exec runs the gateway CLI inside the primary container and returns the
// remote exit code. argv is passed through verbatim after the entrypoint.
func (d *Deployer) Exec(ctx context.Context, argv []string, interactive, tty bool) (int, error) {
	command := append([]string{gatewayEntrypoint}, argv...)
	return d.rt.Exec(ctx, d.GatewayContainer(), command, runtime.ExecOptions{
		TTY:         tty,
		Interactive: interactive,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
}

// Shell opens an interactive shell in the primary container.
func (d *Deployer) Shell(ctx context.Context, tty bool) (int, error) {
	return d.rt.Exec(ctx, d.GatewayContainer(), []string{"/bin/sh"}, runtime.ExecOptions{
		TTY:         tty,
		Interactive: true,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
}

// Setup provisions first-run state: the host directories, a secrets file
// with a generated token, and an empty gateway config. Existing files are
// never overwritten. It ends with a non-fatal runtime check so the
// operator learns about missing images before the first start.
func (d *Deployer) Setup(ctx context.Context) error {
	res, err := d.prov.Ensure(d.hostDirs())
	if err != nil {
		return fmt.Errorf("failed to provision directories: %w", err)
	}
	for _, w := range res.Warnings {
		d.logger.Warn().Msg(w)
	}
	for _, dir := range res.Created {
		fmt.Fprintf(d.out, "Created %s\n", dir)
	}

	if _, err := os.Stat(d.cfg.EnvFile); err == nil {
		fmt.Fprintf(d.out, "Secrets file %s already exists, leaving it untouched\n", d.cfg.EnvFile)
	} else if os.IsNotExist(err) {
		token := uuid.NewString()
		if err := envfile.Write(d.cfg.EnvFile, envfile.Map{config.EnvKeyGatewayToken: token}); err != nil {
			return fmt.Errorf("failed to write secrets file: %w", err)
		}
		fmt.Fprintf(d.out, "Wrote %s with a generated gateway token\n", d.cfg.EnvFile)
	} else {
		return fmt.Errorf("failed to check secrets file: %w", err)
	}

	gatewayConfig := filepath.Join(d.cfg.ConfigDir, gatewayConfigFile)
	if _, err := os.Stat(gatewayConfig); err == nil {
		fmt.Fprintf(d.out, "Gateway config %s already exists, leaving it untouched\n", gatewayConfig)
	} else if os.IsNotExist(err) {
		if err := os.WriteFile(gatewayConfig, []byte("{}\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write gateway config: %w", err)
		}
		fmt.Fprintf(d.out, "Wrote %s\n", gatewayConfig)
	} else {
		return fmt.Errorf("failed to check gateway config: %w", err)
	}

	d.printReadiness(ctx)
	return nil
}

// printReadiness summarizes what the first start will need. Failures here
// are advice, not errors.
func (d *Deployer) printReadiness(ctx context.Context) {
	if err := d.rt.Available(ctx); err != nil {
		fmt.Fprintf(d.out, "Runtime check: %v\n", err)
		return
	}
	for _, img := range []struct{ ref, file string }{
		{d.cfg.GatewayImage, "Containerfile.gateway"},
		{d.cfg.BrowserImage, "Containerfile.browser"},
	} {
		exists, err := d.rt.ImageExists(ctx, img.ref)
		switch {
		case err != nil:
			fmt.Fprintf(d.out, "Image %s: check failed: %v\n", img.ref, err)
		case exists:
			fmt.Fprintf(d.out, "Image %s: present\n", img.ref)
		default:
			fmt.Fprintf(d.out, "Image %s: missing, build it with: podman build -t %s -f %s .\n", img.ref, img.ref, img.file)
		}
	}
	fmt.Fprintf(d.out, "Run 'clawpod start' to bring the pod up\n")
}
