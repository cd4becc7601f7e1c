// Package config loads changelog-relay settings from flags, the environment and
// .env files.
//
// Precedence, highest first: explicitly set flags, environment variables,
// .env file values, defaults. The legacy environment variable names
// DISCORD_WEBHOOK_URL and HUMANE_CHANGELOG_URL are honoured alongside the
// generic WEBHOOK_URL and CHANGELOG_URL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Notifier kinds
const (
	NotifierWebhook  = "webhook"
	NotifierTelegram = "telegram"
	NotifierTwitter  = "twitter"
	NotifierDryRun   = "dry-run"
)

const (
	DefaultInterval  = 600 * time.Second
	DefaultStateFile = "posted_updates.json"
)

// Flag names double as viper keys
const (
	keyWebhookURL         = "webhook-url"
	keyChangelogURL       = "changelog-url"
	keyInterval           = "interval"
	keyStateFile          = "state-file"
	keyNotifier           = "notifier"
	keyInsecureSkipVerify = "insecure-skip-verify"
	keyLogLevel           = "log-level"
	keyTelegramBotToken   = "telegram-bot-token"
	keyTelegramChatID     = "telegram-chat-id"
	keyStateGistID        = "state-gist-id"
	keyGitHubToken        = "github-token"
)

// Config holds the runtime settings
type Config struct {
	WebhookURL         string
	ChangelogURL       string
	Interval           time.Duration
	StateFile          string
	Notifier           string
	InsecureSkipVerify bool
	LogLevel           string
	TelegramBotToken   string
	TelegramChatID     string
	StateGistID        string // When set, state is kept in this Gist instead of StateFile
	GitHubToken        string
}

// RegisterFlags adds the configuration flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(keyWebhookURL, "", "Chat webhook URL (env: DISCORD_WEBHOOK_URL, WEBHOOK_URL)")
	fs.String(keyChangelogURL, "", "Changelog page payload URL (env: HUMANE_CHANGELOG_URL, CHANGELOG_URL)")
	fs.Int(keyInterval, int(DefaultInterval/time.Second), "Seconds to wait between checks (env: CHECK_INTERVAL)")
	fs.String(keyStateFile, DefaultStateFile, "File recording already posted updates (env: STATE_FILE)")
	fs.String(keyNotifier, NotifierWebhook, "Where to post: webhook, telegram, twitter or dry-run (env: NOTIFIER)")
	fs.Bool(keyInsecureSkipVerify, false, "Skip TLS certificate verification for the changelog (env: CHANGELOG_INSECURE_SKIP_VERIFY)")
	fs.String(keyLogLevel, "info", "Log level: debug, info, warn or error (env: LOG_LEVEL)")
	fs.String(keyStateGistID, "", "Keep state in this GitHub Gist instead of the state file (env: STATE_GIST_ID)")
}

// LoadEnvFiles loads .env files in priority order:
// 1. ENV_FILE environment variable (if set, loads only this file)
// 2. .env.local (if exists, overrides .env)
// 3. .env (default)
// Variables already present in the environment are never overwritten.
func LoadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}

	return nil
}

// Load reads the configuration. fs may be nil, in which case only the
// environment and defaults are consulted.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault(keyInterval, int(DefaultInterval/time.Second))
	v.SetDefault(keyStateFile, DefaultStateFile)
	v.SetDefault(keyNotifier, NotifierWebhook)
	v.SetDefault(keyLogLevel, "info")

	envs := map[string][]string{
		keyWebhookURL:         {"DISCORD_WEBHOOK_URL", "WEBHOOK_URL"},
		keyChangelogURL:       {"HUMANE_CHANGELOG_URL", "CHANGELOG_URL"},
		keyInterval:           {"CHECK_INTERVAL"},
		keyStateFile:          {"STATE_FILE"},
		keyNotifier:           {"NOTIFIER"},
		keyInsecureSkipVerify: {"CHANGELOG_INSECURE_SKIP_VERIFY"},
		keyLogLevel:           {"LOG_LEVEL"},
		keyTelegramBotToken:   {"TELEGRAM_BOT_TOKEN"},
		keyTelegramChatID:     {"TELEGRAM_CHAT_ID"},
		keyStateGistID:        {"STATE_GIST_ID"},
		keyGitHubToken:        {"GITHUB_TOKEN"},
	}
	for key, names := range envs {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	cfg := &Config{
		WebhookURL:         strings.TrimSpace(v.GetString(keyWebhookURL)),
		ChangelogURL:       strings.TrimSpace(v.GetString(keyChangelogURL)),
		Interval:           time.Duration(v.GetInt(keyInterval)) * time.Second,
		StateFile:          v.GetString(keyStateFile),
		Notifier:           strings.ToLower(strings.TrimSpace(v.GetString(keyNotifier))),
		InsecureSkipVerify: v.GetBool(keyInsecureSkipVerify),
		LogLevel:           v.GetString(keyLogLevel),
		TelegramBotToken:   v.GetString(keyTelegramBotToken),
		TelegramChatID:     v.GetString(keyTelegramChatID),
		StateGistID:        strings.TrimSpace(v.GetString(keyStateGistID)),
		GitHubToken:        v.GetString(keyGitHubToken),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings needed by the selected notifier are present
func (c *Config) Validate() error {
	var errs []error

	if c.ChangelogURL == "" {
		errs = append(errs, errors.New("changelog URL is required (--changelog-url or HUMANE_CHANGELOG_URL)"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.StateGistID == "" && c.StateFile == "" {
		errs = append(errs, errors.New("state file is required"))
	}
	if c.StateGistID != "" && c.GitHubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is required when state is kept in a gist"))
	}

	switch c.Notifier {
	case NotifierWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("webhook URL is required (--webhook-url or DISCORD_WEBHOOK_URL)"))
		}
	case NotifierTelegram:
		if c.TelegramBotToken == "" || c.TelegramChatID == "" {
			errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier"))
		}
	case NotifierTwitter, NotifierDryRun:
	default:
		errs = append(errs, fmt.Errorf("unknown notifier: %s (must be webhook, telegram, twitter or dry-run)", c.Notifier))
	}

	return errors.Join(errs...)
}
