package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"server": { "addr": ":9090" },
		"fuel": { "tankCapacityLiters": 64000 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, ":9090", viper.GetString("server.addr"))
	assert.Equal(t, 64000.0, viper.GetFloat64("fuel.tankCapacityLiters"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, ":8080", viper.GetString("server.addr"))
	assert.Equal(t, "mission.db", viper.GetString("db.path"))
	assert.Equal(t, 250, viper.GetInt("engine.tickIntervalMs"))
	assert.Equal(t, 0.25, viper.GetFloat64("engine.timeScaleMin"))
	assert.Equal(t, 8.0, viper.GetFloat64("engine.timeScaleMax"))
	assert.Equal(t, 30.0, viper.GetFloat64("helm.maxLateralOffset"))
	assert.Equal(t, 0.55, viper.GetFloat64("helm.correctionGain"))
	assert.Equal(t, 52000.0, viper.GetFloat64("fuel.tankCapacityLiters"))
	assert.Equal(t, 30, viper.GetInt("narrative.timeoutSeconds"))
	assert.Equal(t, "openai", viper.GetString("llm.provider"))
}

func TestLoadOrDefaults_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := LoadOrDefaults(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", viper.GetString("server.addr"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
