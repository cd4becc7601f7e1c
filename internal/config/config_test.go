package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// clearEnv isolates a test from the caller's environment and any .env file
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DISCORD_WEBHOOK_URL", "WEBHOOK_URL", "HUMANE_CHANGELOG_URL", "CHANGELOG_URL",
		"CHECK_INTERVAL", "STATE_FILE", "NOTIFIER", "CHANGELOG_INSECURE_SKIP_VERIFY",
		"LOG_LEVEL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "STATE_GIST_ID", "GITHUB_TOKEN",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return fs
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/hook")
	t.Setenv("HUMANE_CHANGELOG_URL", "https://example.com/changelog.json")

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.WebhookURL != "https://discord.example/hook" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
	if cfg.ChangelogURL != "https://example.com/changelog.json" {
		t.Errorf("ChangelogURL = %q", cfg.ChangelogURL)
	}
	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", cfg.Interval, DefaultInterval)
	}
	if cfg.StateFile != DefaultStateFile {
		t.Errorf("StateFile = %q, want %q", cfg.StateFile, DefaultStateFile)
	}
	if cfg.Notifier != NotifierWebhook {
		t.Errorf("Notifier = %q, want webhook", cfg.Notifier)
	}
	if cfg.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should default to false")
	}
}

func TestLoad_GenericEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_URL", "https://hook")
	t.Setenv("CHANGELOG_URL", "https://changelog")
	t.Setenv("CHECK_INTERVAL", "30")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.WebhookURL != "https://hook" || cfg.ChangelogURL != "https://changelog" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Interval)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "https://env-hook")
	t.Setenv("HUMANE_CHANGELOG_URL", "https://env-changelog")
	t.Setenv("CHECK_INTERVAL", "30")

	cfg, err := Load(newFlags(t, "--webhook-url", "https://flag-hook", "--interval", "5", "--state-file", "state.json"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.WebhookURL != "https://flag-hook" {
		t.Errorf("WebhookURL = %q, want flag value", cfg.WebhookURL)
	}
	if cfg.ChangelogURL != "https://env-changelog" {
		t.Errorf("ChangelogURL = %q, want env value", cfg.ChangelogURL)
	}
	if cfg.Interval != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", cfg.Interval)
	}
	if cfg.StateFile != "state.json" {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), "relay.env")
	content := "HUMANE_CHANGELOG_URL=https://from-file\nNOTIFIER=dry-run\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", envFile)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ChangelogURL != "https://from-file" {
		t.Errorf("ChangelogURL = %q, want value from env file", cfg.ChangelogURL)
	}
	if cfg.Notifier != NotifierDryRun {
		t.Errorf("Notifier = %q, want dry-run", cfg.Notifier)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		WebhookURL:   "https://hook",
		ChangelogURL: "https://changelog",
		Interval:     time.Minute,
		StateFile:    "state.json",
		Notifier:     NotifierWebhook,
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "missing changelog URL", modify: func(c *Config) { c.ChangelogURL = "" }, wantErr: "changelog URL"},
		{name: "missing webhook URL", modify: func(c *Config) { c.WebhookURL = "" }, wantErr: "webhook URL"},
		{name: "dry run needs no webhook", modify: func(c *Config) { c.WebhookURL = ""; c.Notifier = NotifierDryRun }},
		{name: "zero interval", modify: func(c *Config) { c.Interval = 0 }, wantErr: "interval"},
		{name: "gist without token", modify: func(c *Config) { c.StateGistID = "abc" }, wantErr: "GITHUB_TOKEN"},
		{name: "gist with token", modify: func(c *Config) { c.StateGistID = "abc"; c.GitHubToken = "t"; c.StateFile = "" }},
		{name: "unknown notifier", modify: func(c *Config) { c.Notifier = "pager" }, wantErr: "unknown notifier"},
		{name: "telegram without token", modify: func(c *Config) { c.Notifier = NotifierTelegram }, wantErr: "TELEGRAM_BOT_TOKEN"},
		{
			name: "telegram with credentials",
			modify: func(c *Config) {
				c.Notifier = NotifierTelegram
				c.TelegramBotToken = "token"
				c.TelegramChatID = "123"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
