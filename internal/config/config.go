// Package config loads reporter configuration from defaults, an optional
// YAML file, and environment variables. Secrets (API tokens, webhook URLs,
// Drive folder IDs) are never compiled in; they must come from the
// environment or the config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds content API settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScalyrConfig holds log-search API settings.
type ScalyrConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Token    string `mapstructure:"token"`
	Filter   string `mapstructure:"filter"`
	MaxCount int    `mapstructure:"max_count"`
}

// DriveConfig holds Google Drive upload settings.
type DriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	FallbackDir     string `mapstructure:"fallback_dir"`
	FolderID        string `mapstructure:"folder_id"`
	ShareDomain     string `mapstructure:"share_domain"`
}

// SlackConfig holds webhook notification settings.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
	IconEmoji  string `mapstructure:"icon_emoji"`
}

// ReportConfig holds report-level options.
type ReportConfig struct {
	Days            int      `mapstructure:"days"`
	ExcludeSearches []string `mapstructure:"exclude_searches"`
}

// Config is the full reporter configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Scalyr ScalyrConfig `mapstructure:"scalyr"`
	Drive  DriveConfig  `mapstructure:"drive"`
	Slack  SlackConfig  `mapstructure:"slack"`
	Report ReportConfig `mapstructure:"report"`
}

// Load reads configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "https://www.texastribune.org/api/v1/")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("scalyr.base_url", "https://www.scalyr.com")
	v.SetDefault("scalyr.filter", `$logfile='/var/log/nginx/access.log' ' /search/?'`)
	v.SetDefault("scalyr.max_count", 5000)
	v.SetDefault("drive.credentials_file", "googledrive-credentials.json")
	v.SetDefault("drive.fallback_dir", "/etc/ssl/certs")
	v.SetDefault("slack.channel", "#analytics")
	v.SetDefault("slack.username", "analyticsbot")
	v.SetDefault("slack.icon_emoji", ":hotbot:")
	v.SetDefault("report.days", 7)
	v.SetDefault("report.exclude_searches", []string{"tinfoil"})

	v.SetEnvPrefix("ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known names the deploy environment already uses.
	_ = v.BindEnv("scalyr.token", "SCALYR_API_TOKEN", "ANALYTICS_SCALYR_TOKEN")
	_ = v.BindEnv("slack.webhook_url", "SLACK_WEBHOOK_URL", "ANALYTICS_SLACK_WEBHOOK_URL")
	_ = v.BindEnv("drive.folder_id", "DRIVE_FOLDER_ID", "ANALYTICS_DRIVE_FOLDER_ID")
	_ = v.BindEnv("drive.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS", "ANALYTICS_DRIVE_CREDENTIALS_FILE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ValidateSearch checks settings needed for the search report.
func (c *Config) ValidateSearch() error {
	if c.Scalyr.Token == "" {
		return errors.New("scalyr token not configured (set SCALYR_API_TOKEN)")
	}
	return nil
}

// ValidatePublish checks settings needed to upload and notify.
func (c *Config) ValidatePublish() error {
	if c.Drive.FolderID == "" {
		return errors.New("drive folder id not configured (set DRIVE_FOLDER_ID)")
	}
	if c.Slack.WebhookURL == "" {
		return errors.New("slack webhook url not configured (set SLACK_WEBHOOK_URL)")
	}
	return nil
}
