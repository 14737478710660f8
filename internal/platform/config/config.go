// Package config loads server configuration from a JSON file with sensible
// defaults for every tunable, so the server can boot with no config file
// present at all.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file viper looks for inside the config directory.
const FileName = "mission_server.cfg.json"

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// LoadOrDefaults behaves like Load but tolerates a missing config file,
// leaving every key at its default.
func LoadOrDefaults(configDir string) error {
	err := Load(configDir)
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("server.addr", ":8080")

	viper.SetDefault("db.path", "mission.db")

	viper.SetDefault("engine.tickIntervalMs", 250)
	viper.SetDefault("engine.timeScaleMin", 0.25)
	viper.SetDefault("engine.timeScaleMax", 8.0)
	viper.SetDefault("engine.minutesAcceleration", 120.0)

	viper.SetDefault("helm.maxLateralOffset", 30.0)
	viper.SetDefault("helm.correctionGain", 0.55)
	viper.SetDefault("helm.turbulenceAmplitude", 9.0)
	viper.SetDefault("helm.maxHeadingDeviation", 12.0)
	viper.SetDefault("helm.offCourseBand", 0.8)
	viper.SetDefault("helm.offCourseLimitSeconds", 12.0)

	viper.SetDefault("crew.shiftLengthHours", 6.0)

	viper.SetDefault("fuel.tankCapacityLiters", 52000.0)
	viper.SetDefault("fuel.baseBurnPerHour", 180.0)
	viper.SetDefault("fuel.burnPerUnitHour", 14.0)
	viper.SetDefault("fuel.stressMultiplier", 0.8)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.dailyBudgetUSD", 10.0)
	viper.SetDefault("llm.monthlyBudgetUSD", 50.0)

	viper.SetDefault("narrative.timeoutSeconds", 30)
	viper.SetDefault("narrative.heartbeatMinutes", 5)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float64 config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a millisecond-denominated key as a time.Duration.
func GetDuration(msKey string) time.Duration {
	return time.Duration(viper.GetInt(msKey)) * time.Millisecond
}
