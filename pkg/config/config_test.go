package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points HOME at a fresh temp dir so tests never read a real
// ~/.openclaw. Returns the implied config dir (not yet created).
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return filepath.Join(home, ".openclaw")
}

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestLoadDefaults(t *testing.T) {
	cfgDir := isolateHome(t)
	t.Setenv(EnvKeyGatewayToken, "")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPodName, cfg.PodName)
	assert.Equal(t, DefaultGatewayImage, cfg.GatewayImage)
	assert.Equal(t, DefaultBrowserImage, cfg.BrowserImage)
	assert.Equal(t, cfgDir, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(cfgDir, "workspace"), cfg.WorkspaceDir)
	assert.Equal(t, filepath.Join(cfgDir, "browser-data"), cfg.BrowserDataDir)
	assert.Equal(t, filepath.Join(cfgDir, ".env"), cfg.EnvFile)
	assert.Equal(t, DefaultGatewayPort, cfg.GatewayPort)
	assert.Equal(t, DefaultDisplayPort, cfg.DisplayPort)
	assert.Equal(t, BindLoopback, cfg.GatewayBind)
	assert.Equal(t, DefaultProbeInterval, cfg.ProbeInterval)
	assert.Equal(t, DefaultProbeAttempts, cfg.ProbeAttempts)
	assert.False(t, cfg.RequireBrowserReady)
	assert.Empty(t, cfg.GatewayToken())
}

func TestLoadPrecedence(t *testing.T) {
	cfgDir := isolateHome(t)
	writeConfigFile(t, cfgDir, SettingsFileName, "pod_name: from-file\ngateway_port: 20000\n")

	t.Run("settings file beats defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.PodName)
		assert.Equal(t, 20000, cfg.GatewayPort)
	})

	t.Run("environment beats settings file", func(t *testing.T) {
		t.Setenv("OPENCLAW_POD_NAME", "from-env")
		cfg, err := Load(Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.PodName)
	})

	t.Run("flag beats environment", func(t *testing.T) {
		t.Setenv("OPENCLAW_POD_NAME", "from-env")
		cfg, err := Load(Overrides{PodName: "from-flag"})
		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.PodName)
	})
}

func TestSecretsFileSuppliesDefaults(t *testing.T) {
	cfgDir := isolateHome(t)
	writeConfigFile(t, cfgDir, ".env", "OPENCLAW_GATEWAY_TOKEN=abc123\nOPENCLAW_GATEWAY_PORT=19000\n")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.GatewayToken())
	assert.Equal(t, 19000, cfg.GatewayPort, "secrets file should supply settings the caller did not export")
}

func TestCallingEnvBeatsSecretsFile(t *testing.T) {
	cfgDir := isolateHome(t)
	writeConfigFile(t, cfgDir, ".env", "OPENCLAW_GATEWAY_TOKEN=from-file\n")
	t.Setenv("OPENCLAW_GATEWAY_TOKEN", "from-env")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GatewayToken())
}

func TestProbeSettingsFromFile(t *testing.T) {
	cfgDir := isolateHome(t)
	writeConfigFile(t, cfgDir, SettingsFileName, "probe:\n  interval: 250ms\n  attempts: 10\n")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.ProbeInterval)
	assert.Equal(t, 10, cfg.ProbeAttempts)
}

func TestHomeExpansion(t *testing.T) {
	isolateHome(t)
	t.Setenv("OPENCLAW_WORKSPACE_DIR", "~/projects")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	home := os.Getenv("HOME")
	assert.Equal(t, filepath.Join(home, "projects"), cfg.WorkspaceDir)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "bad pod name",
			env:   map[string]string{"OPENCLAW_POD_NAME": "-leading-dash"},
			field: "pod name",
		},
		{
			name:  "bad bind mode",
			env:   map[string]string{"OPENCLAW_GATEWAY_BIND": "everywhere"},
			field: "gateway bind",
		},
		{
			name:  "port collision",
			env:   map[string]string{"OPENCLAW_GATEWAY_PORT": "6080"},
			field: "ports",
		},
		{
			name:  "port out of range",
			env:   map[string]string{"OPENCLAW_DISPLAY_PORT": "70000"},
			field: "OPENCLAW_DISPLAY_PORT",
		},
		{
			name:  "port not a number",
			env:   map[string]string{"OPENCLAW_GATEWAY_PORT": "many"},
			field: "OPENCLAW_GATEWAY_PORT",
		},
		{
			name:  "bad tmpfs size",
			env:   map[string]string{"OPENCLAW_TMPFS_SIZE": "enormous"},
			field: "tmpfs size",
		},
		{
			name:  "bad strict readiness flag",
			env:   map[string]string{"OPENCLAW_REQUIRE_BROWSER_READY": "perhaps"},
			field: "OPENCLAW_REQUIRE_BROWSER_READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateHome(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(Overrides{})
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestMalformedSettingsFile(t *testing.T) {
	cfgDir := isolateHome(t)
	writeConfigFile(t, cfgDir, SettingsFileName, "pod_name: [unclosed\n")

	_, err := Load(Overrides{})
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
