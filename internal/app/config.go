package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	NetworkPath string // hcl files describing the simulation graph
	Steps       int    // timesteps to simulate

	// Workers overrides the network's engine block when >= 0; -1 defers
	// to the file. Strategy and StepTimeout follow the same rule with
	// their zero values.
	Workers     int
	Strategy    string
	StepTimeout time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// StreamURL enables the socket.io step-report emitter when non-empty.
	StreamURL string

	// Seed drives the input encoders; runs with equal seeds and equal
	// worker counts inject identical inputs.
	Seed uint64

	// Learning toggles the update-weights phase for the whole run.
	Learning bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.NetworkPath == "" {
		return nil, errors.New("NetworkPath is a required configuration field and cannot be empty")
	}
	if cfg.Steps <= 0 {
		return nil, errors.New("Steps must be positive")
	}
	return &cfg, nil
}
