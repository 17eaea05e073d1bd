package app

import (
	"errors"
	"fmt"
)

// Mode selects an operating profile.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDevelopment, ModeProduction:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q: must be %q or %q", s, ModeDevelopment, ModeProduction)
}

// Profile lists what a mode turns on.
type Profile struct {
	// Watch keeps the process running and rebuilds on changes.
	Watch bool
	// Notify connects to the host and reloads the resource after builds.
	Notify bool
	// Publish uploads outputs when the project configures storage.
	Publish bool
}

// Profile returns the fixed profile of m.
func (m Mode) Profile() Profile {
	switch m {
	case ModeDevelopment:
		return Profile{Watch: true, Notify: true}
	case ModeProduction:
		return Profile{Publish: true}
	}
	return Profile{}
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root        string
	ProjectFile string // relative to Root unless absolute
	EnvFile     string // relative to Root unless absolute
	Mode        Mode
	// ResourceName overrides the name resolved from the project.
	ResourceName string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeDevelopment
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
