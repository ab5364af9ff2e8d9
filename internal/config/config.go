package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/media"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Overseerr     OverseerrConfig     `mapstructure:"overseerr"`
	DryRun        bool                `mapstructure:"dry_run"`
	AutoApprove   bool                `mapstructure:"auto_approve"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Matching      MatchingConfig      `mapstructure:"matching"`
	Dedup         DedupConfig         `mapstructure:"dedup"`
	Notifiarr     NotifiarrConfig     `mapstructure:"notifiarr"`
	Notifications NotificationsConfig `mapstructure:"notifications"`

	TVCategories    *category.Set `mapstructure:"-"`
	MovieCategories *category.Set `mapstructure:"-"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`

	missingEnv []string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Threads         int    `mapstructure:"threads"`
	ConnectionLimit int    `mapstructure:"connection_limit"`
}

// OverseerrConfig holds the request platform connection.
type OverseerrConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// WebhookConfig holds inbound webhook settings.
type WebhookConfig struct {
	Token string `mapstructure:"token"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // console output: "console" or "json"
	Color       bool   `mapstructure:"color"`
	FileEnabled bool   `mapstructure:"file_enabled"`
	Path        string `mapstructure:"path"`
	FileFormat  string `mapstructure:"file_format"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Compress    bool   `mapstructure:"compress"`
}

// MatchingConfig selects how category keywords are compared.
type MatchingConfig struct {
	Keywords  string  `mapstructure:"keywords"` // exact, substring or fuzzy
	Threshold float64 `mapstructure:"threshold"`
}

// DedupConfig controls suppression of redelivered webhooks.
type DedupConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// NotifiarrConfig holds Notifiarr passthrough settings.
type NotifiarrConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Channel string `mapstructure:"channel"`
	Source  string `mapstructure:"source"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// NotificationsConfig holds the other outbound notifiers.
type NotificationsConfig struct {
	Discord DiscordConfig `mapstructure:"discord"`
	Webhook HookConfig    `mapstructure:"webhook"`
}

// DiscordConfig posts decisions to a Discord webhook.
type DiscordConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
	AvatarURL  string `mapstructure:"avatar_url"`
}

// HookConfig posts decisions as JSON to an arbitrary endpoint.
type HookConfig struct {
	URL     string            `mapstructure:"url"`
	Method  string            `mapstructure:"method"`
	Headers map[string]string `mapstructure:"headers"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            12210,
			Threads:         5,
			ConnectionLimit: 200,
		},
		Overseerr:   OverseerrConfig{Timeout: 5},
		AutoApprove: true,
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "console",
			Color:       true,
			FileEnabled: true,
			Path:        "./logs/overfiltrr.log",
			FileFormat:  "json",
			MaxSizeMB:   5,
			MaxBackups:  5,
			MaxAgeDays:  30,
		},
		Matching: MatchingConfig{
			Keywords:  category.StrategySubstring,
			Threshold: category.DefaultFuzzyThreshold,
		},
		Dedup:           DedupConfig{Enabled: true, TTL: 10 * time.Minute},
		Notifiarr:       NotifiarrConfig{Source: "Overseerr", Timeout: 10},
		TVCategories:    &category.Set{MediaType: media.TypeTV},
		MovieCategories: &category.Set{MediaType: media.TypeMovie},
	}
}

// SearchPaths lists where Load looks for a config file when none is given.
func SearchPaths() []string {
	paths := []string{"./config.yaml", "./config.yml", "./configs/config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".overfiltrr", "config.yaml"))
	}
	return append(paths, "/config/config.yaml")
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OVERFILTRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = os.Getenv("OVERFILTRR_CONFIG")
	}
	if configPath == "" {
		configPath = discover()
	}

	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.parse(v, data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
		cfg.File = configPath
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// parse substitutes ${VAR} references, lifts the category sections out of the
// document and hands the rest to viper.
func (c *Config) parse(v *viper.Viper, data []byte) error {
	content := substituteEnvVars(string(data))
	c.missingEnv = findMissingEnvVars(content)

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return errors.New("top level must be a mapping")
	}

	normalizeLegacy(root)

	if node := takeKey(root, "tv_categories"); node != nil {
		if err := node.Decode(c.TVCategories); err != nil {
			return fmt.Errorf("tv_categories: %w", err)
		}
	}
	if node := takeKey(root, "movie_categories"); node != nil {
		if err := node.Decode(c.MovieCategories); err != nil {
			return fmt.Errorf("movie_categories: %w", err)
		}
	}

	rest, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	return v.ReadConfig(bytes.NewReader(rest))
}

func discover() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.threads", d.Server.Threads)
	v.SetDefault("server.connection_limit", d.Server.ConnectionLimit)

	v.SetDefault("overseerr.base_url", "")
	v.SetDefault("overseerr.api_key", "")
	v.SetDefault("overseerr.timeout", d.Overseerr.Timeout)

	v.SetDefault("dry_run", false)
	v.SetDefault("auto_approve", d.AutoApprove)
	v.SetDefault("webhook.token", "")

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.color", d.Logging.Color)
	v.SetDefault("logging.file_enabled", d.Logging.FileEnabled)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.file_format", d.Logging.FileFormat)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", false)

	v.SetDefault("matching.keywords", d.Matching.Keywords)
	v.SetDefault("matching.threshold", d.Matching.Threshold)

	v.SetDefault("dedup.enabled", d.Dedup.Enabled)
	v.SetDefault("dedup.ttl", d.Dedup.TTL)

	v.SetDefault("notifiarr.api_key", "")
	v.SetDefault("notifiarr.channel", "")
	v.SetDefault("notifiarr.source", d.Notifiarr.Source)
	v.SetDefault("notifiarr.timeout", d.Notifiarr.Timeout)

	v.SetDefault("notifications.discord.webhook_url", "")
	v.SetDefault("notifications.discord.username", "")
	v.SetDefault("notifications.discord.avatar_url", "")
	v.SetDefault("notifications.webhook.url", "")
	v.SetDefault("notifications.webhook.method", "POST")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Categories returns the set for a media type.
func (c *Config) Categories(mt media.Type) *category.Set {
	if mt == media.TypeTV {
		return c.TVCategories
	}
	return c.MovieCategories
}

// TimeoutDuration returns the Overseerr request timeout.
func (c *OverseerrConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
