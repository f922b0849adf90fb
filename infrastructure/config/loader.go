package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked for when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Fetcher FetcherConfig `yaml:"fetcher"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Google  GoogleConfig  `yaml:"google"`
}

// PathsConfig contains directory paths for media processing
type PathsConfig struct {
	WorkDirectory string `yaml:"work_directory"`
}

// FetcherConfig contains yt-dlp settings
type FetcherConfig struct {
	Format       string `yaml:"format"`
	AudioFormat  string `yaml:"audio_format"`
	AudioQuality string `yaml:"audio_quality"`
	BinaryPath   string `yaml:"binary_path"`
	AutoInstall  bool   `yaml:"auto_install"`
}

// FFmpegConfig contains ffmpeg settings
type FFmpegConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	OutputDirectory string `yaml:"output_directory"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
	KeepOutputs     *bool  `yaml:"keep_outputs"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	keep := true
	return &Config{
		Paths: PathsConfig{
			WorkDirectory: "temp",
		},
		Fetcher: FetcherConfig{
			Format:       "bestaudio/best",
			AudioFormat:  "mp3",
			AudioQuality: "192",
		},
		FFmpeg: FFmpegConfig{
			Path: "ffmpeg",
		},
		Server: ServerConfig{
			Addr:            "0.0.0.0:5001",
			OutputDirectory: "downloads",
			MaxConcurrent:   4,
			KeepOutputs:     &keep,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Google: GoogleConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
	}
}

// ShouldKeepOutputs reports whether served files stay on disk after the response
func (s ServerConfig) ShouldKeepOutputs() bool {
	return s.KeepOutputs == nil || *s.KeepOutputs
}

// Load reads and parses the configuration from the specified YAML file.
// Keys absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults fills values explicitly blanked in the file
func (c *Config) applyDefaults() {
	d := Default()
	if c.Paths.WorkDirectory == "" {
		c.Paths.WorkDirectory = d.Paths.WorkDirectory
	}
	if c.Fetcher.Format == "" {
		c.Fetcher.Format = d.Fetcher.Format
	}
	if c.Fetcher.AudioFormat == "" {
		c.Fetcher.AudioFormat = d.Fetcher.AudioFormat
	}
	if c.Fetcher.AudioQuality == "" {
		c.Fetcher.AudioQuality = d.Fetcher.AudioQuality
	}
	if c.FFmpeg.Path == "" {
		c.FFmpeg.Path = d.FFmpeg.Path
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.OutputDirectory == "" {
		c.Server.OutputDirectory = d.Server.OutputDirectory
	}
	if c.Server.MaxConcurrent <= 0 {
		c.Server.MaxConcurrent = d.Server.MaxConcurrent
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
