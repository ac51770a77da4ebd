// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/formats/adts"
)

// Config represents the complete audcap configuration
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Frame   FrameConfig   `yaml:"frame"`
	Output  OutputConfig  `yaml:"output"`
	ADTS    ADTSConfig    `yaml:"adts"`
	RTP     RTPConfig     `yaml:"rtp"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CaptureConfig selects the input device and its format
type CaptureConfig struct {
	Device      string `yaml:"device"` // empty selects the default device
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	ChunkFrames int    `yaml:"chunk_frames"`
	QueueDepth  int    `yaml:"queue_depth"`
}

// FrameConfig controls frame reassembly
type FrameConfig struct {
	Samples  int  `yaml:"samples"` // sample instants per frame
	PadFinal bool `yaml:"pad_final"`
}

// OutputConfig is the PCM format handed to the encoder or sink
type OutputConfig struct {
	SampleRate   int    `yaml:"sample_rate"`
	Channels     int    `yaml:"channels"`
	SampleFormat string `yaml:"sample_format"`
}

// ADTSConfig contains framed-record parameters
type ADTSConfig struct {
	Profile int `yaml:"profile"`
}

// RTPConfig describes an incoming RTP AAC session
type RTPConfig struct {
	Listen      string `yaml:"listen"`
	PayloadType int    `yaml:"payload_type"`
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// Default returns a configuration that passes Validate: 48kHz stereo
// capture encoded as 44.1kHz stereo AAC LC frames.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			SampleRate:  48000,
			Channels:    2,
			ChunkFrames: 480,
			QueueDepth:  64,
		},
		Frame: FrameConfig{
			Samples: adts.SamplesPerRecord,
		},
		Output: OutputConfig{
			SampleRate:   44100,
			Channels:     2,
			SampleFormat: "s16",
		},
		ADTS: ADTSConfig{
			Profile: 1,
		},
		RTP: RTPConfig{
			Listen:      ":5004",
			PayloadType: 96,
			SampleRate:  44100,
			Channels:    2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file. Keys missing from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Frame.Validate(); err != nil {
		return fmt.Errorf("frame config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.ADTS.Validate(); err != nil {
		return fmt.Errorf("adts config: %w", err)
	}

	if err := c.RTP.Validate(); err != nil {
		return fmt.Errorf("rtp config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	if c.SampleRate < 1000 || c.SampleRate > 384000 {
		return fmt.Errorf("sample_rate must be between 1000 and 384000 Hz, got %d", c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > 8 {
		return fmt.Errorf("channels must be between 1 and 8, got %d", c.Channels)
	}

	if c.ChunkFrames < 0 {
		return fmt.Errorf("chunk_frames cannot be negative, got %d", c.ChunkFrames)
	}

	if c.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be at least 1, got %d", c.QueueDepth)
	}

	return nil
}

// Format returns the PCM format the device is opened with.
func (c *CaptureConfig) Format() audio.PCMFormat {
	return audio.PCMFormat{SampleRate: c.SampleRate, Channels: c.Channels, Sample: audio.S16}
}

// Validate validates frame configuration
func (f *FrameConfig) Validate() error {
	if f.Samples < 1 {
		return fmt.Errorf("samples must be positive, got %d", f.Samples)
	}

	return nil
}

// Validate validates output configuration
func (o *OutputConfig) Validate() error {
	_, err := o.Format()
	return err
}

// Format returns the configured output PCM format.
func (o *OutputConfig) Format() (audio.PCMFormat, error) {
	sample, err := audio.ParseSampleFormat(o.SampleFormat)
	if err != nil {
		return audio.PCMFormat{}, fmt.Errorf("sample_format: %w", err)
	}

	f := audio.PCMFormat{SampleRate: o.SampleRate, Channels: o.Channels, Sample: sample}
	if err := f.Validate(); err != nil {
		return audio.PCMFormat{}, err
	}

	return f, nil
}

// Validate checks that the profile fits the ADTS header
func (a *ADTSConfig) Validate() error {
	if a.Profile < 0 || a.Profile > 3 {
		return fmt.Errorf("profile must be between 0 and 3, got %d", a.Profile)
	}

	return nil
}

// Validate validates RTP configuration
func (r *RTPConfig) Validate() error {
	if r.PayloadType < 0 || r.PayloadType > 127 {
		return fmt.Errorf("payload_type must be between 0 and 127, got %d", r.PayloadType)
	}

	if _, err := adts.SampleRateIndex(r.SampleRate); err != nil {
		return fmt.Errorf("sample_rate: %w", err)
	}

	if r.Channels < 1 || r.Channels > 8 {
		return fmt.Errorf("channels must be between 1 and 8, got %d", r.Channels)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	return nil
}
