package ammetest

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DeviceConfig locates one device endpoint.
type DeviceConfig struct {
	Port    int    `yaml:"port"`
	Command string `yaml:"command"`
}

// Endpoint returns the endpoint address for the configured port.
func (d DeviceConfig) Endpoint() string {
	return fmt.Sprintf("localhost:%d", d.Port)
}

// SamplingConfig holds the pacing parameters of one collection
// session.
type SamplingConfig struct {
	// FrequencyHz is the target sample rate.
	FrequencyHz float64 `yaml:"sampling_frequency_hz"`

	// Count is the exact number of samples per session.
	Count int `yaml:"measurements_count"`

	// DurationSeconds is the nominal total duration, recorded in
	// the result metadata.
	DurationSeconds float64 `yaml:"total_duration_seconds"`

	// ContinueOnError keeps a session running past individual
	// faults. The default (false) aborts on the first fault.
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Interval is the pause between sample starts.
func (s SamplingConfig) Interval() time.Duration {
	if s.FrequencyHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / s.FrequencyHz)
}

func (s SamplingConfig) validate() error {
	if s.FrequencyHz <= 0 {
		return errors.New("sampling_frequency_hz must be positive")
	}
	if s.Count <= 0 {
		return errors.New("measurements_count must be positive")
	}
	return nil
}

// AnalysisConfig selects the descriptive metrics to report.
type AnalysisConfig struct {
	StatisticalMetrics []string `yaml:"statistical_metrics"`
	Visualization      struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"visualization"`
}

// TestingConfig groups the sampling parameters.
type TestingConfig struct {
	Sampling SamplingConfig `yaml:"sampling"`
}

// ResultConfig locates persisted results.
type ResultConfig struct {
	SavePath string `yaml:"save_path"`
}

// Config is the full configuration surface, loadable from YAML.
type Config struct {
	Ammeters         map[string]DeviceConfig `yaml:"ammeters"`
	Testing          TestingConfig           `yaml:"testing"`
	Analysis         AnalysisConfig          `yaml:"analysis"`
	ErrorSimulation  InjectorConfig          `yaml:"error_simulation"`
	ResultManagement ResultConfig            `yaml:"result_management"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration once at load; components receive
// the already-validated sub-structs.
func (c *Config) Validate() error {
	if len(c.Ammeters) == 0 {
		return errors.New("no ammeters configured")
	}
	for kind, dev := range c.Ammeters {
		if dev.Port <= 0 || dev.Port > 65535 {
			return errors.Errorf("ammeter %q: invalid port %d", kind, dev.Port)
		}
		if dev.Command == "" {
			return errors.Errorf("ammeter %q: empty command", kind)
		}
	}
	if err := c.Testing.Sampling.validate(); err != nil {
		return err
	}
	if r := c.ErrorSimulation.ErrorRate; r < 0 || r > 1 {
		return errors.Errorf("error_rate must be in [0,1], got %v", r)
	}
	for kind, w := range c.ErrorSimulation.FaultWeights {
		if w < 0 {
			return errors.Errorf("error_types[%s]: negative weight %v", kind, w)
		}
	}
	return nil
}
