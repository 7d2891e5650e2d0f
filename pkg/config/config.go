package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/openclaw/clawpod/pkg/envfile"
)

// Defaults for every tunable; the gateway token deliberately has none.
const (
	DefaultPodName       = "openclaw"
	DefaultGatewayImage  = "localhost/openclaw-gateway:latest"
	DefaultBrowserImage  = "localhost/openclaw-browser:latest"
	DefaultGatewayPort   = 18789
	DefaultDisplayPort   = 6080
	DefaultTmpfsSize     = "64m"
	DefaultControlURL    = "http://127.0.0.1:9222/json/version"
	DefaultProbeAttempts = 60

	// SettingsFileName is resolved relative to the config dir.
	SettingsFileName = "clawpod.yaml"

	// EnvKeyGatewayToken is the one required secret; start refuses to touch
	// the runtime without it.
	EnvKeyGatewayToken = "OPENCLAW_GATEWAY_TOKEN"
)

// DefaultProbeInterval is the pause between readiness attempts.
const DefaultProbeInterval = 500 * time.Millisecond

// BindMode selects which interfaces the gateway port binds on the host.
type BindMode string

const (
	BindLoopback BindMode = "loopback"
	BindAll      BindMode = "all"
)

// ValidationError reports a configuration value that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Config is the fully resolved orchestrator configuration. It is built once
// by Load and passed as a parameter; no component reads the environment
// after Load returns.
type Config struct {
	PodName        string
	GatewayImage   string
	BrowserImage   string
	ConfigDir      string
	WorkspaceDir   string
	BrowserDataDir string
	EnvFile        string

	GatewayPort int
	DisplayPort int
	GatewayBind BindMode

	TmpfsSize         string
	BrowserControlURL string

	RequireBrowserReady bool
	ProbeInterval       time.Duration
	ProbeAttempts       int

	LogLevel string
	LogJSON  bool

	// Env is the merged workload environment: secrets file defaults overlaid
	// by the calling process environment. FileEnv holds just the secrets
	// file's own keys; the container receives those keys at their merged
	// values, never the caller's unrelated variables.
	Env     envfile.Map
	FileEnv envfile.Map
}

// Overrides carries explicit command-line values. Empty strings and nil
// pointers mean "not set on the command line".
type Overrides struct {
	PodName             string
	ConfigDir           string
	EnvFile             string
	LogLevel            string
	LogJSON             *bool
	RequireBrowserReady *bool
}

// fileSettings mirrors the optional YAML settings file.
type fileSettings struct {
	PodName             string `yaml:"pod_name"`
	GatewayImage        string `yaml:"gateway_image"`
	BrowserImage        string `yaml:"browser_image"`
	WorkspaceDir        string `yaml:"workspace_dir"`
	BrowserDataDir      string `yaml:"browser_data_dir"`
	EnvFile             string `yaml:"env_file"`
	GatewayPort         int    `yaml:"gateway_port"`
	DisplayPort         int    `yaml:"display_port"`
	GatewayBind         string `yaml:"gateway_bind"`
	TmpfsSize           string `yaml:"tmpfs_size"`
	BrowserControlURL   string `yaml:"browser_control_url"`
	RequireBrowserReady *bool  `yaml:"require_browser_ready"`
	Probe               struct {
		Interval string `yaml:"interval"`
		Attempts int    `yaml:"attempts"`
	} `yaml:"probe"`
	LogLevel string `yaml:"log_level"`
}

var podNameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Load resolves the configuration. Precedence, highest first: explicit
// overrides, calling environment, secrets file, settings file, defaults.
// The secrets file participates because shell deployments traditionally
// source it before running anything; a key set there behaves like an
// exported variable unless the calling environment already sets it.
func Load(o Overrides) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	configDir := firstNonEmpty(o.ConfigDir, os.Getenv("OPENCLAW_CONFIG_DIR"), filepath.Join(home, ".openclaw"))
	configDir = expandHome(configDir, home)

	fs, err := loadSettings(filepath.Join(configDir, SettingsFileName))
	if err != nil {
		return Config{}, err
	}

	envFile := firstNonEmpty(o.EnvFile, os.Getenv("OPENCLAW_ENV_FILE"), fs.EnvFile, filepath.Join(configDir, ".env"))
	envFile = expandHome(envFile, home)

	fileVals, err := envfile.Load(envFile)
	if err != nil {
		return Config{}, err
	}
	merged := envfile.Merge(fileVals, os.Environ())

	cfg := Config{
		ConfigDir: configDir,
		EnvFile:   envFile,
		Env:       merged,
		FileEnv:   fileVals,
	}

	cfg.PodName = firstNonEmpty(o.PodName, merged["OPENCLAW_POD_NAME"], fs.PodName, DefaultPodName)
	cfg.GatewayImage = firstNonEmpty(merged["OPENCLAW_GATEWAY_IMAGE"], fs.GatewayImage, DefaultGatewayImage)
	cfg.BrowserImage = firstNonEmpty(merged["OPENCLAW_BROWSER_IMAGE"], fs.BrowserImage, DefaultBrowserImage)
	cfg.WorkspaceDir = expandHome(firstNonEmpty(merged["OPENCLAW_WORKSPACE_DIR"], fs.WorkspaceDir, filepath.Join(configDir, "workspace")), home)
	cfg.BrowserDataDir = expandHome(firstNonEmpty(merged["OPENCLAW_BROWSER_DATA_DIR"], fs.BrowserDataDir, filepath.Join(configDir, "browser-data")), home)
	cfg.TmpfsSize = firstNonEmpty(merged["OPENCLAW_TMPFS_SIZE"], fs.TmpfsSize, DefaultTmpfsSize)
	cfg.BrowserControlURL = firstNonEmpty(merged["OPENCLAW_BROWSER_CONTROL_URL"], fs.BrowserControlURL, DefaultControlURL)
	cfg.GatewayBind = BindMode(firstNonEmpty(merged["OPENCLAW_GATEWAY_BIND"], fs.GatewayBind, string(BindLoopback)))
	cfg.LogLevel = firstNonEmpty(o.LogLevel, merged["OPENCLAW_LOG_LEVEL"], fs.LogLevel, "info")

	if cfg.GatewayPort, err = resolvePort("OPENCLAW_GATEWAY_PORT", merged, fs.GatewayPort, DefaultGatewayPort); err != nil {
		return Config{}, err
	}
	if cfg.DisplayPort, err = resolvePort("OPENCLAW_DISPLAY_PORT", merged, fs.DisplayPort, DefaultDisplayPort); err != nil {
		return Config{}, err
	}

	cfg.ProbeInterval = DefaultProbeInterval
	if fs.Probe.Interval != "" {
		d, err := time.ParseDuration(fs.Probe.Interval)
		if err != nil {
			return Config{}, &ValidationError{Field: "probe.interval", Reason: err.Error()}
		}
		cfg.ProbeInterval = d
	}
	cfg.ProbeAttempts = DefaultProbeAttempts
	if fs.Probe.Attempts != 0 {
		cfg.ProbeAttempts = fs.Probe.Attempts
	}

	cfg.RequireBrowserReady, err = resolveBool("OPENCLAW_REQUIRE_BROWSER_READY", merged, fs.RequireBrowserReady, o.RequireBrowserReady)
	if err != nil {
		return Config{}, err
	}

	if o.LogJSON != nil {
		cfg.LogJSON = *o.LogJSON
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GatewayToken returns the required workload secret from the merged
// environment; empty means it was supplied nowhere.
func (c Config) GatewayToken() string {
	return c.Env[EnvKeyGatewayToken]
}

// GatewayURL is the dashboard address reported after start.
func (c Config) GatewayURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", c.GatewayPort)
}

// DisplayURL is the remote display address reported after start.
func (c Config) DisplayURL() string {
	return fmt.Sprintf("http://localhost:%d", c.DisplayPort)
}

// SettingsPath returns the settings file location under the config dir.
func (c Config) SettingsPath() string {
	return filepath.Join(c.ConfigDir, SettingsFileName)
}

func (c Config) validate() error {
	if !podNameRE.MatchString(c.PodName) {
		return &ValidationError{Field: "pod name", Reason: fmt.Sprintf("%q is not a valid container name", c.PodName)}
	}
	if c.GatewayPort == c.DisplayPort {
		return &ValidationError{Field: "ports", Reason: fmt.Sprintf("gateway and display port are both %d", c.GatewayPort)}
	}
	switch c.GatewayBind {
	case BindLoopback, BindAll:
	default:
		return &ValidationError{Field: "gateway bind", Reason: fmt.Sprintf("%q is not one of loopback, all", c.GatewayBind)}
	}
	if _, err := units.RAMInBytes(c.TmpfsSize); err != nil {
		return &ValidationError{Field: "tmpfs size", Reason: fmt.Sprintf("%q: %v", c.TmpfsSize, err)}
	}
	if c.ProbeInterval <= 0 {
		return &ValidationError{Field: "probe.interval", Reason: "must be positive"}
	}
	if c.ProbeAttempts <= 0 {
		return &ValidationError{Field: "probe.attempts", Reason: "must be positive"}
	}
	return nil
}

func loadSettings(path string) (fileSettings, error) {
	var fs fileSettings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return fs, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fs, &ValidationError{Field: "settings file", Reason: err.Error()}
	}
	return fs, nil
}

func resolvePort(key string, merged envfile.Map, fromFile, def int) (int, error) {
	if v := merged[key]; v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, &ValidationError{Field: key, Reason: fmt.Sprintf("%q is not a number", v)}
		}
		if p < 1 || p > 65535 {
			return 0, &ValidationError{Field: key, Reason: fmt.Sprintf("%d is outside 1-65535", p)}
		}
		return p, nil
	}
	if fromFile != 0 {
		if fromFile < 1 || fromFile > 65535 {
			return 0, &ValidationError{Field: key, Reason: fmt.Sprintf("%d is outside 1-65535", fromFile)}
		}
		return fromFile, nil
	}
	return def, nil
}

func resolveBool(key string, merged envfile.Map, fromFile, fromFlag *bool) (bool, error) {
	if fromFlag != nil {
		return *fromFlag, nil
	}
	if v := merged[key]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, &ValidationError{Field: key, Reason: fmt.Sprintf("%q is not a boolean", v)}
		}
		return b, nil
	}
	if fromFile != nil {
		return *fromFile, nil
	}
	return false, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
