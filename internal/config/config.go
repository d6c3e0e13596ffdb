package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COMMITGENIE"

// Config represents the commitgenie configuration.
type Config struct {
	Service ServiceConfig `json:"service" mapstructure:"service"`
	Format  FormatConfig  `json:"format" mapstructure:"format"`
	Review  ReviewConfig  `json:"review" mapstructure:"review"`
	Request RequestConfig `json:"request" mapstructure:"request"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	Privacy PrivacyConfig `json:"privacy" mapstructure:"privacy"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Stats   StatsConfig   `json:"stats" mapstructure:"stats"`
}

// ServiceConfig identifies the completion backend.
type ServiceConfig struct {
	APIKey  string `json:"apiKey" mapstructure:"apiKey"`
	BaseURL string `json:"baseURL" mapstructure:"baseURL"`
	Model   string `json:"model" mapstructure:"model"`
}

// Missing returns the names of required service fields that are empty.
func (s ServiceConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.APIKey) == "" {
		missing = append(missing, "service.apiKey")
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		missing = append(missing, "service.baseURL")
	}
	if strings.TrimSpace(s.Model) == "" {
		missing = append(missing, "service.model")
	}
	return missing
}

// FormatConfig controls generated commit messages.
type FormatConfig struct {
	OutputLanguage    string `json:"outputLanguage" mapstructure:"outputLanguage"`
	EnableEmojiPrefix bool   `json:"enableEmojiPrefix" mapstructure:"enableEmojiPrefix"`
	CustomPrompt      string `json:"customPrompt,omitempty" mapstructure:"customPrompt"`
}

// ReviewConfig controls the pre-commit code review.
type ReviewConfig struct {
	Mode         string `json:"mode" mapstructure:"mode"`
	CustomPrompt string `json:"customPrompt,omitempty" mapstructure:"customPrompt"`
	// Combined asks for the review and the commit message in one call.
	Combined bool `json:"combined" mapstructure:"combined"`
}

// RequestConfig controls completion calls.
type RequestConfig struct {
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// Timeout returns the per-call timeout.
func (r RequestConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// PrivacyConfig controls redaction of diffs before upload.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets" mapstructure:"redactSecrets"`
}

// CacheConfig controls the review result cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Dir        string `json:"dir,omitempty" mapstructure:"dir"`
	TTLSeconds int    `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// StatsConfig locates the token statistics database.
type StatsConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL: "https://api.deepseek.com",
			Model:   "deepseek-chat",
		},
		Format: FormatConfig{
			OutputLanguage: "Simplified Chinese",
		},
		Review: ReviewConfig{
			Mode: "standard",
		},
		Request: RequestConfig{
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
	}
}

// Keys lists every settable key in dotted form.
var Keys = []string{
	"service.apiKey",
	"service.baseURL",
	"service.model",
	"format.outputLanguage",
	"format.enableEmojiPrefix",
	"format.customPrompt",
	"review.mode",
	"review.customPrompt",
	"review.combined",
	"request.timeoutSeconds",
	"logging.level",
	"logging.format",
	"privacy.redactSecrets",
	"cache.enabled",
	"cache.dir",
	"cache.ttlSeconds",
	"stats.path",
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("service.apiKey", d.Service.APIKey)
	v.SetDefault("service.baseURL", d.Service.BaseURL)
	v.SetDefault("service.model", d.Service.Model)
	v.SetDefault("format.outputLanguage", d.Format.OutputLanguage)
	v.SetDefault("format.enableEmojiPrefix", d.Format.EnableEmojiPrefix)
	v.SetDefault("format.customPrompt", d.Format.CustomPrompt)
	v.SetDefault("review.mode", d.Review.Mode)
	v.SetDefault("review.customPrompt", d.Review.CustomPrompt)
	v.SetDefault("review.combined", d.Review.Combined)
	v.SetDefault("request.timeoutSeconds", d.Request.TimeoutSeconds)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("privacy.redactSecrets", d.Privacy.RedactSecrets)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttlSeconds", d.Cache.TTLSeconds)
	v.SetDefault("stats.path", d.Stats.Path)
}

// ConfigDir returns the platform-appropriate config directory for commitgenie.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "commitgenie"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "commitgenie"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "commitgenie"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "commitgenie"), nil
	default:
		return filepath.Join(home, ".config", "commitgenie"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags, keyed by dotted config key; empty
// values are ignored.
func Load(overrides map[string]string) (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return load(path, overrides)
}

func load(path string, overrides map[string]string) (Config, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range overrides {
		if val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// LoadFile loads only the config file. Returns Default and nil error if the
// file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFile(path)
}

func loadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return saveFile(path, cfg)
}

func saveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// The file may hold an API key.
	return os.WriteFile(path, data, 0o600)
}

// SaveModel updates service.model in the config file, leaving other keys as
// they are on disk.
func SaveModel(model string) error {
	cfg, err := LoadFile()
	if err != nil {
		return err
	}
	cfg.Service.Model = model
	return Save(cfg)
}

// SetField sets a single config field by dotted key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "service.apiKey":
		cfg.Service.APIKey = value
	case "service.baseURL":
		cfg.Service.BaseURL = value
	case "service.model":
		cfg.Service.Model = value
	case "format.outputLanguage":
		cfg.Format.OutputLanguage = value
	case "format.enableEmojiPrefix":
		return setBool(&cfg.Format.EnableEmojiPrefix, key, value)
	case "format.customPrompt":
		cfg.Format.CustomPrompt = value
	case "review.mode":
		cfg.Review.Mode = value
	case "review.customPrompt":
		cfg.Review.CustomPrompt = value
	case "review.combined":
		return setBool(&cfg.Review.Combined, key, value)
	case "request.timeoutSeconds":
		return setInt(&cfg.Request.TimeoutSeconds, key, value)
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "stats.path":
		cfg.Stats.Path = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}
