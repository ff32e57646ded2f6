// Package config holds the host tool configuration, loaded from and
// saved to a YAML file. The calibrated bandgap value itself is not
// configuration; it lives in the record store.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains serial console configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// CalibrationConfig contains calibration session parameters.
type CalibrationConfig struct {
	NominalRefMv    uint16        `yaml:"nominal_ref_mv"`   // bandgap reference until calibrated
	DecodeTimeout   time.Duration `yaml:"decode_timeout"`   // inter-byte key decode timeout
	DisplayInterval time.Duration `yaml:"display_interval"` // live Vcc readout period
	StorePath       string        `yaml:"store_path"`       // calibration record file
}

// SimConfig describes the simulated board used by the -sim mode.
type SimConfig struct {
	SupplyMv  uint16  `yaml:"supply_mv"`  // true supply of the virtual board
	BandgapMv uint16  `yaml:"bandgap_mv"` // true bandgap of the virtual part
	Noise     float64 `yaml:"noise"`      // ADC noise amplitude in codes
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Calibration: CalibrationConfig{
			NominalRefMv:    1100,
			DecodeTimeout:   100 * time.Millisecond,
			DisplayInterval: time.Second,
			StorePath:       "bandgap.cal",
		},
		Sim: SimConfig{
			SupplyMv:  5000,
			BandgapMv: 1093, // deliberately off nominal so there is something to tune
			Noise:     2,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Calibration.NominalRefMv == 0 {
		c.Calibration.NominalRefMv = def.Calibration.NominalRefMv
	}
	if c.Calibration.DecodeTimeout == 0 {
		c.Calibration.DecodeTimeout = def.Calibration.DecodeTimeout
	}
	if c.Calibration.DisplayInterval == 0 {
		c.Calibration.DisplayInterval = def.Calibration.DisplayInterval
	}
	if c.Calibration.StorePath == "" {
		c.Calibration.StorePath = def.Calibration.StorePath
	}

	if c.Sim.SupplyMv == 0 {
		c.Sim.SupplyMv = def.Sim.SupplyMv
	}
	if c.Sim.BandgapMv == 0 {
		c.Sim.BandgapMv = def.Sim.BandgapMv
	}
	if c.Sim.Noise == 0 {
		c.Sim.Noise = def.Sim.Noise
	}
}
