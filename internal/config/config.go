package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for characterbot.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	LLM     LLMConfig     `toml:"llm"`
	Image   ImageConfig   `toml:"image"`
	Metrics MetricsConfig `toml:"metrics"`
}

type OutputConfig struct {
	Root         string `toml:"root"`
	Backend      string `toml:"backend"` // file or s3
	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	Distribution string `toml:"distribution"`
	BaseURL      string `toml:"base_url"` // public URL of the store root, used in the feed
}

type LLMConfig struct {
	Provider    string   `toml:"provider"` // openai or gemini
	Model       string   `toml:"model"`
	BaseURL     string   `toml:"base_url"`
	Temperature float32  `toml:"temperature"`
	Attempts    int      `toml:"attempts"`
	RetryDelay  Duration `toml:"retry_delay"`
}

type ImageConfig struct {
	Backend   string   `toml:"backend"` // sdwebui or dezgo
	BaseURL   string   `toml:"base_url"`
	Model     string   `toml:"model"`
	Width     int      `toml:"width"`
	Height    int      `toml:"height"`
	Steps     int      `toml:"steps"`
	CFGScale  float64  `toml:"cfg_scale"`
	Sampler   string   `toml:"sampler"`
	BatchSize int      `toml:"batch_size"`
	RateLimit Duration `toml:"rate_limit"`
	Timeout   Duration `toml:"timeout"`
}

type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// Duration decodes TOML strings such as "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Output: OutputConfig{Root: "output", Backend: "file"},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.2,
			Attempts:    3,
			RetryDelay:  Duration{1500 * time.Millisecond},
		},
		Image: ImageConfig{
			Backend:   "sdwebui",
			BaseURL:   "http://127.0.0.1:7860",
			Width:     512,
			Height:    768,
			Steps:     28,
			CFGScale:  7,
			Sampler:   "DPM++ 2M Karras",
			BatchSize: 2,
			RateLimit: Duration{time.Second},
			Timeout:   Duration{5 * time.Minute},
		},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
