package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultAppName   = "ledger"
	defaultAppEnv    = "development"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultPrecision = 4
	maxPrecision     = 18

	precisionEnvVar  = "OUTPUT_PRECISION"
	disputableEnvVar = "DISPUTABLE_WITHDRAWALS"
	logFormatEnvVar  = "LOG_FORMAT"
)

// Config captures runtime configuration loaded from environment variables.
type Config struct {
	AppName   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// OutputPrecision is the number of fractional digits rendered for balances.
	OutputPrecision int32

	// DisputableWithdrawals lets withdrawals enter the dispute lifecycle alongside deposits.
	DisputableWithdrawals bool
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getEnv(logFormatEnvVar, defaultLogFormat)),
		OutputPrecision: defaultPrecision,
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("invalid %s: %q", logFormatEnvVar, cfg.LogFormat)
	}

	if v := os.Getenv(precisionEnvVar); v != "" {
		places, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", precisionEnvVar, err)
		}
		if places < 0 || places > maxPrecision {
			return Config{}, fmt.Errorf("invalid %s: must be between 0 and %d", precisionEnvVar, maxPrecision)
		}
		cfg.OutputPrecision = int32(places)
	}

	if v := os.Getenv(disputableEnvVar); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", disputableEnvVar, err)
		}
		cfg.DisputableWithdrawals = enabled
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
