package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Server    Server    `yaml:"server,omitempty"`
	Storage   Storage   `yaml:"storage,omitempty"`
	Detection Detection `yaml:"detection,omitempty"`
	Telemetry Telemetry `yaml:"telemetry,omitempty"`
}

// Server holds HTTP listener settings
type Server struct {
	ListenAddr   string        `yaml:"listen_addr"`
	MetricsAddr  string        `yaml:"metrics_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Storage holds the embedded store location
type Storage struct {
	Dir string `yaml:"dir"`
}

// Weights are the per-factor score contributions. Each triggered
// factor adds its weight; the sum across all four never exceeds 100.
type Weights struct {
	PolicyViolation  int `yaml:"policy_violation"`
	OffHourAccess    int `yaml:"off_hour_access"`
	ExcessiveRecords int `yaml:"excessive_records"`
	HighFrequency    int `yaml:"high_frequency"`
}

// Levels are the inclusive lower score bounds for each alert level.
// Scores below Low map to no alert.
type Levels struct {
	Low    int `yaml:"low"`
	Medium int `yaml:"medium"`
	High   int `yaml:"high"`
}

// Detection holds every tunable the scoring engine reads. Loaded once
// at startup and treated as read-only for the process lifetime.
type Detection struct {
	Weights             Weights       `yaml:"weights"`
	Levels              Levels        `yaml:"levels"`
	RecordsMultiplier   float64       `yaml:"records_multiplier"`
	FrequencyMultiplier float64       `yaml:"frequency_multiplier"`
	FrequencyWindow     time.Duration `yaml:"frequency_window"`
}

// Telemetry holds OTEL settings
type Telemetry struct {
	ServiceName  string `yaml:"service_name"`
	OTELEndpoint string `yaml:"otel_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// Default returns the documented configuration defaults
func Default() *Config {
	return &Config{
		Server: Server{
			ListenAddr:   ":8080",
			MetricsAddr:  ":9090",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: Storage{
			Dir: "/var/lib/vakta",
		},
		Detection: Detection{
			Weights: Weights{
				PolicyViolation:  40,
				OffHourAccess:    25,
				ExcessiveRecords: 20,
				HighFrequency:    15,
			},
			Levels: Levels{
				Low:    70,
				Medium: 80,
				High:   90,
			},
			RecordsMultiplier:   10.0,
			FrequencyMultiplier: 3.0,
			FrequencyWindow:     24 * time.Hour,
		},
		Telemetry: Telemetry{
			ServiceName: "vakta",
		},
	}
}

// Load reads configuration from file, layered over defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate catches configuration errors at startup so the engine can
// assume sane settings at call time
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage dir is required")
	}
	return c.Detection.Validate()
}

// Validate ensures weights, level boundaries, and multipliers are sane
func (d *Detection) Validate() error {
	w := d.Weights
	for name, weight := range map[string]int{
		"policy_violation":  w.PolicyViolation,
		"off_hour_access":   w.OffHourAccess,
		"excessive_records": w.ExcessiveRecords,
		"high_frequency":    w.HighFrequency,
	} {
		if weight <= 0 {
			return fmt.Errorf("weight %s must be positive, got %d", name, weight)
		}
	}
	if sum := w.PolicyViolation + w.OffHourAccess + w.ExcessiveRecords + w.HighFrequency; sum > 100 {
		return fmt.Errorf("factor weights sum to %d, must not exceed 100", sum)
	}

	l := d.Levels
	if l.Low <= 0 || l.Low >= l.Medium || l.Medium >= l.High || l.High > 100 {
		return fmt.Errorf("alert level boundaries %d/%d/%d must be strictly increasing within (0,100]",
			l.Low, l.Medium, l.High)
	}

	if d.RecordsMultiplier <= 0 {
		return fmt.Errorf("records multiplier must be positive, got %g", d.RecordsMultiplier)
	}
	if d.FrequencyMultiplier <= 0 {
		return fmt.Errorf("frequency multiplier must be positive, got %g", d.FrequencyMultiplier)
	}
	if d.FrequencyWindow <= 0 {
		return fmt.Errorf("frequency window must be positive, got %s", d.FrequencyWindow)
	}
	return nil
}
