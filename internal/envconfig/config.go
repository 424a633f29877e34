// Package envconfig reads tracegrad settings from the environment.
//
// Variables:
//   - TRACEGRAD_DEBUG: log level (true for debug, or an integer verbosity)
//   - TRACEGRAD_SEED: seed for weight initialization and synthetic data
//   - TRACEGRAD_LR: default learning rate for the train command
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Var returns an environment variable stripped of surrounding whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the log level from TRACEGRAD_DEBUG.
//
// Any true boolean enables debug; an integer n sets level -4n. Default: info.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TRACEGRAD_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Seed returns TRACEGRAD_SEED and whether it was set to a valid value.
func Seed() (uint64, bool) {
	s := Var("TRACEGRAD_SEED")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		slog.Warn("invalid environment variable, ignoring", "key", "TRACEGRAD_SEED", "value", s)
		return 0, false
	}
	return n, true
}

// LearningRate returns TRACEGRAD_LR, or defaultValue when unset or not a positive
// number.
func LearningRate(defaultValue float64) float64 {
	s := Var("TRACEGRAD_LR")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid environment variable, using default", "key", "TRACEGRAD_LR", "value", s, "default", defaultValue)
		return defaultValue
	}
	return f
}

// EnvVar documents one variable for help output.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns the current value of every variable keyed by name.
func AsMap() map[string]EnvVar {
	seed, _ := Seed()
	return map[string]EnvVar{
		"TRACEGRAD_DEBUG": {"TRACEGRAD_DEBUG", LogLevel(), "Show additional debug information (e.g. TRACEGRAD_DEBUG=1)"},
		"TRACEGRAD_SEED":  {"TRACEGRAD_SEED", seed, "Seed for weight initialization and synthetic data"},
		"TRACEGRAD_LR":    {"TRACEGRAD_LR", LearningRate(0), "Learning rate used when --lr is not given"},
	}
}
