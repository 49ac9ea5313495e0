package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		require.Equal(t, "/custom/config/giftdist/giftdist.yml", GlobalPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		require.True(t, filepath.IsAbs(got), "GlobalPath() should return absolute path, got %v", got)
		require.Equal(t, "giftdist.yml", filepath.Base(got))
	})
}

func TestProjectPath(t *testing.T) {
	require.Equal(t, "giftdist.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	t.Chdir(t.TempDir())
	xdgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgDir)

	require.False(t, Exists(), "no config should exist yet")

	require.NoError(t, WriteGlobal(Default()))
	require.True(t, Exists(), "global config should be detected")

	require.NoError(t, os.Remove(GlobalPath()))
	require.NoError(t, WriteProject(Default()))
	require.True(t, Exists(), "project config should be detected")
}

func TestWriteGlobal(t *testing.T) {
	xdgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgDir)

	cfg := Default()
	cfg.DefaultCount = 25
	require.NoError(t, WriteGlobal(cfg))

	data, err := os.ReadFile(filepath.Join(xdgDir, "giftdist", "giftdist.yml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "default_count: 25")
	require.Contains(t, string(data), "batch_label: test")
}

func TestLoad_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	global := Default()
	global.DefaultCount = 5
	global.DefaultValue = 1000
	require.NoError(t, WriteGlobal(global))

	project := Default()
	project.DefaultCount = 50
	project.DefaultValue = 1000
	project.SendDelay = 10 * time.Millisecond
	require.NoError(t, WriteProject(project))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50, cfg.DefaultCount)
	require.Equal(t, 1000, cfg.DefaultValue)
	require.Equal(t, 10*time.Millisecond, cfg.SendDelay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GIFTDIST_DEFAULT_COUNT", "7")
	t.Setenv("GIFTDIST_DISPATCH", "false")
	t.Setenv("GIFTDIST_SEND_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.DefaultCount)
	require.False(t, cfg.Dispatch)
	require.Equal(t, 250*time.Millisecond, cfg.SendDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "count too small", mutate: func(c *Config) { c.DefaultCount = 0 }, wantErr: true},
		{name: "count too large", mutate: func(c *Config) { c.DefaultCount = 101 }, wantErr: true},
		{name: "count at max", mutate: func(c *Config) { c.DefaultCount = 100 }},
		{name: "zero value", mutate: func(c *Config) { c.DefaultValue = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.SendDelay = -time.Second }, wantErr: true},
		{name: "zero delay", mutate: func(c *Config) { c.SendDelay = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
