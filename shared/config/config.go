package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputPath       = "templates/index.html"
	DefaultDescriptionLimit = 200
	DefaultReportTitle      = "YouTube Channel Monitor"
	DefaultHealthPort       = 8080
	DefaultSMTPPort         = 587
)

// DefaultChannels are tracked when the config file does not list any
var DefaultChannels = []string{
	"UCR8bJIY-5FjZX7ZfU2RHe3w",
	"UCED3hlYdD0SlCff7jJ8tF3Q",
	"UCFYGr5NPq7klB5N0tb5Cdyg",
	"UCSX8DZVtyvQ2Rf_lumekb3g",
}

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Channels   []string         `yaml:"channels"`
	Report     ReportConfig     `yaml:"report"`
	Storage    StorageConfig    `yaml:"storage"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Email      EmailConfig      `yaml:"email"`
	Schedule   string           `yaml:"schedule"`
}

type YouTubeConfig struct {
	APIKey   string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	Endpoint string `yaml:"endpoint"`
}

type ReportConfig struct {
	OutputPath       string `yaml:"output_path"`
	Title            string `yaml:"title"`
	DescriptionLimit int    `yaml:"description_limit"`
}

type StorageConfig struct {
	LedgerFile       string `yaml:"ledger_file"`
	LedgerMaxAgeDays int    `yaml:"ledger_max_age_days"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// EmailConfig configures the optional new-video digest
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether a digest recipient and server are configured
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.ToEmail != ""
}

// Load reads .env, the optional YAML config file and the environment, in that order.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile, explicit := os.LookupEnv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
		explicit = false
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case os.IsNotExist(err) && !explicit:
		log.Printf("No config file at %s, using defaults", configFile)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY_2")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	var channels []string
	for _, id := range c.Channels {
		if id = strings.TrimSpace(id); id != "" {
			channels = append(channels, id)
		}
	}
	if len(channels) == 0 && c.Channels == nil {
		channels = append(channels, DefaultChannels...)
	}
	c.Channels = channels

	if c.Report.OutputPath == "" {
		c.Report.OutputPath = DefaultOutputPath
	}
	if c.Report.Title == "" {
		c.Report.Title = DefaultReportTitle
	}
	if c.Report.DescriptionLimit <= 0 {
		c.Report.DescriptionLimit = DefaultDescriptionLimit
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = DefaultHealthPort
	}
	if c.Email.Enabled() && c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = DefaultSMTPPort
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one channel id is required (channels)")
	}
	if c.Storage.LedgerMaxAgeDays < 0 {
		return fmt.Errorf("storage.ledger_max_age_days must not be negative")
	}
	if c.Email.Enabled() && c.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email is required when the digest is enabled")
	}
	return nil
}
