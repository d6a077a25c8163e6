package main

import (
	"path/filepath"
	"testing"

	"github.com/desertwitch/metapatch/internal/configuration"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlags_NoArgs tests that a bare invocation leaves everything to the
// configuration file in the working directory.
func TestFlags_NoArgs(t *testing.T) {
	t.Parallel()

	f := newFlagSet()
	require.NoError(t, f.parse(nil))

	path, required := f.configPath()
	assert.Equal(t, configuration.DefaultConfigFile, path)
	assert.False(t, required)

	ovr := f.overrides()
	assert.Nil(t, ovr.Preset)
	assert.Nil(t, ovr.Search)
	assert.Nil(t, ovr.Replace)
	assert.Nil(t, ovr.Filter)
	assert.Nil(t, ovr.FailFast)
	assert.Nil(t, ovr.DryRun)
	assert.Empty(t, ovr.Exclude)
}

// TestFlags_Overrides tests that explicitly set flags become overrides.
func TestFlags_Overrides(t *testing.T) {
	t.Parallel()

	f := newFlagSet()
	require.NoError(t, f.parse([]string{
		"--dir", "Sprites/Usine",
		"--config", "shared.env",
		"-p", "usine",
		"--search", "spritePixelsToUnits: 100",
		"--replace", "",
		"-x", "Gear*.meta", "-x", "*.bak",
		"--fail-fast",
		"-n",
	}))

	path, required := f.configPath()
	assert.Equal(t, "shared.env", path)
	assert.True(t, required)

	ovr := f.overrides()
	require.NotNil(t, ovr.Preset)
	assert.Equal(t, "usine", *ovr.Preset)
	require.NotNil(t, ovr.Search)
	assert.Equal(t, "spritePixelsToUnits: 100", *ovr.Search)
	require.NotNil(t, ovr.Replace)
	assert.Empty(t, *ovr.Replace)
	require.NotNil(t, ovr.FailFast)
	assert.True(t, *ovr.FailFast)
	require.NotNil(t, ovr.DryRun)
	assert.True(t, *ovr.DryRun)
	assert.Nil(t, ovr.SkipUnchanged)
	assert.Equal(t, []string{"Gear*.meta", "*.bak"}, ovr.Exclude)
}

// TestFlags_DefaultConfigInDir tests the configuration lookup in --dir.
func TestFlags_DefaultConfigInDir(t *testing.T) {
	t.Parallel()

	f := newFlagSet()
	require.NoError(t, f.parse([]string{"-d", "Sprites/Metallic"}))

	path, required := f.configPath()
	assert.Equal(t, filepath.Join("Sprites/Metallic", configuration.DefaultConfigFile), path)
	assert.False(t, required)
}

// TestFlags_Fail_Unknown tests the rejection of unknown flags.
func TestFlags_Fail_Unknown(t *testing.T) {
	t.Parallel()

	f := newFlagSet()
	f.set.SetOutput(nopWriter{})

	err := f.parse([]string{"--ppu", "27"})
	require.Error(t, err)
	assert.Equal(t, 1, parseExitCode(err))
}

// TestFlags_Help tests that a help request exits successfully.
func TestFlags_Help(t *testing.T) {
	t.Parallel()

	f := newFlagSet()
	f.set.SetOutput(nopWriter{})
	f.set.Usage = func() {}

	err := f.parse([]string{"--help"})
	require.ErrorIs(t, err, pflag.ErrHelp)
	assert.Equal(t, 0, parseExitCode(err))
	assert.Equal(t, 0, parseExitCode(nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
