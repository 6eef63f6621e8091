package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AttentionConfig carries the product-tunable urgency thresholds. The defaults
// are placeholders pending product sign-off; never hard-code them elsewhere.
type AttentionConfig struct {
	FirstContactAfterHours int `yaml:"first_contact_after_hours"`
	StaleAfterHours        int `yaml:"stale_after_hours"`
}

func (a AttentionConfig) FirstContactAfter() time.Duration {
	return time.Duration(a.FirstContactAfterHours) * time.Hour
}

func (a AttentionConfig) StaleAfter() time.Duration {
	return time.Duration(a.StaleAfterHours) * time.Hour
}

type CallbacksConfig struct {
	MinLeadTimeSeconds   int `yaml:"min_lead_time_seconds"`
	EventDurationMinutes int `yaml:"event_duration_minutes"`
}

func (c CallbacksConfig) MinLeadTime() time.Duration {
	return time.Duration(c.MinLeadTimeSeconds) * time.Second
}

type SourcesConfig struct {
	// FetchLimit caps rows per origin; 0 = unbounded. Unbounded is the
	// default so that old leads stay reachable for attention scoring.
	FetchLimit int `yaml:"fetch_limit"`
}

type PushConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	DryRun  bool   `yaml:"dry_run"`
}

type CalendarConfig struct {
	BaseURL string `yaml:"base_url"`
}

type EmailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type DispatcherConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	BatchSize       int `yaml:"batch_size"`
}

func (d DispatcherConfig) Interval() time.Duration {
	return time.Duration(d.IntervalSeconds) * time.Second
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Attention  AttentionConfig  `yaml:"attention"`
	Callbacks  CallbacksConfig  `yaml:"callbacks"`
	Sources    SourcesConfig    `yaml:"sources"`
	Push       PushConfig       `yaml:"push"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Email      EmailConfig      `yaml:"email"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	if cfg.Attention.FirstContactAfterHours <= 0 {
		cfg.Attention.FirstContactAfterHours = 48
	}
	if cfg.Attention.StaleAfterHours <= 0 {
		cfg.Attention.StaleAfterHours = 168
	}
	if cfg.Callbacks.MinLeadTimeSeconds <= 0 {
		cfg.Callbacks.MinLeadTimeSeconds = 10
	}
	if cfg.Callbacks.EventDurationMinutes <= 0 {
		cfg.Callbacks.EventDurationMinutes = 30
	}
	if cfg.Dispatcher.IntervalSeconds <= 0 {
		cfg.Dispatcher.IntervalSeconds = 30
	}
	if cfg.Dispatcher.BatchSize <= 0 {
		cfg.Dispatcher.BatchSize = 50
	}
	return &cfg
}
