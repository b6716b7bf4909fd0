// Package config reads the optional aeropulse.yaml settings file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aeropulse/aeropulse/internal/monitor"
	"github.com/aeropulse/aeropulse/internal/report"
	"github.com/aeropulse/aeropulse/internal/waveform"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "aeropulse.yaml"

// Source kinds
const (
	SourceMic   = "mic"
	SourceFile  = "file"
	SourceSynth = "synth"
)

// Config is the top-level structure for aeropulse.yaml.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Display DisplayConfig `yaml:"display"`
	Input   InputConfig   `yaml:"input"`
	Report  ReportConfig  `yaml:"report"`
	Patient PatientConfig `yaml:"patient"`
}

// MonitorConfig controls sampling and the synthetic level.
type MonitorConfig struct {
	Baseline       float64       `yaml:"baseline"`
	Volatility     float64       `yaml:"volatility"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	DurationTick   time.Duration `yaml:"duration_tick"`
	AlertThreshold float64       `yaml:"alert_threshold"`
	Window         int           `yaml:"display_window"`
}

// DisplayConfig sizes the waveform surface.
type DisplayConfig struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
	Width         int           `yaml:"width"`  // terminal cells
	Height        int           `yaml:"height"` // terminal cells
}

// InputConfig selects the audio source.
type InputConfig struct {
	Source     string  `yaml:"source"` // "mic" | "file" | "synth"
	Device     string  `yaml:"device"`
	File       string  `yaml:"file"`
	SampleRate int     `yaml:"sample_rate"`
	BufferSize int     `yaml:"buffer_size"`
	ToneHz     float64 `yaml:"tone_hz"`
}

// ReportConfig controls export output.
type ReportConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Title      string `yaml:"title"`
	SessionLog bool   `yaml:"session_log"`
}

// PatientConfig points at the patient under monitoring.
type PatientConfig struct {
	File string `yaml:"file"` // empty uses the built-in demo patient
	ID   int    `yaml:"id"` // 0 selects the first patient in the file
}

// DefaultConfig returns a Config populated with the live monitor's defaults.
func DefaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Baseline:       monitor.DefaultBaseline,
			Volatility:     monitor.LiveVolatility,
			SampleInterval: 1500 * time.Millisecond,
			DurationTick:   time.Second,
			AlertThreshold: waveform.DefaultThreshold,
			Window:         monitor.DefaultWindow,
		},
		Display: DisplayConfig{
			FrameInterval: time.Second / 30,
			Width:         60,
			Height:        8,
		},
		Input: InputConfig{
			Source:     SourceMic,
			SampleRate: 44100,
			BufferSize: 1024,
			ToneHz:     220,
		},
		Report: ReportConfig{
			OutputDir: ".",
			Title:     report.DefaultTitle,
		},
	}
}

// Load overlays the YAML file at path on DefaultConfig. Keys missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate rejects settings the recorder cannot run with.
func (c *Config) Validate() error {
	m := c.Monitor
	switch {
	case m.Baseline < monitor.MinLevel || m.Baseline > monitor.MaxLevel:
		return fmt.Errorf("monitor.baseline %v outside [0,100]", m.Baseline)
	case m.Volatility < 0:
		return fmt.Errorf("monitor.volatility must not be negative")
	case m.SampleInterval <= 0 || m.DurationTick <= 0:
		return fmt.Errorf("monitor intervals must be positive")
	case m.Window <= 0:
		return fmt.Errorf("monitor.display_window must be positive")
	case c.Display.FrameInterval <= 0:
		return fmt.Errorf("display.frame_interval must be positive")
	case c.Display.Width < 4 || c.Display.Height < 1:
		return fmt.Errorf("display size %dx%d too small", c.Display.Width, c.Display.Height)
	}
	switch c.Input.Source {
	case SourceMic, SourceSynth:
	case SourceFile:
		if c.Input.File == "" {
			return fmt.Errorf("input.file is required for the file source")
		}
	default:
		return fmt.Errorf("unknown input.source %q", c.Input.Source)
	}
	return nil
}

// Recorder maps the monitor section onto the recorder's settings.
func (c *Config) Recorder() monitor.Config {
	return monitor.Config{
		Baseline:       c.Monitor.Baseline,
		Volatility:     c.Monitor.Volatility,
		SampleInterval: c.Monitor.SampleInterval,
		DurationTick:   c.Monitor.DurationTick,
		AlertThreshold: c.Monitor.AlertThreshold,
		Window:         c.Monitor.Window,
	}
}
