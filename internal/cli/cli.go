package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/changelog-relay/internal/config"
	"github.com/pfrederiksen/changelog-relay/internal/logger"
	"github.com/pfrederiksen/changelog-relay/internal/notifier"
	"github.com/pfrederiksen/changelog-relay/internal/scraper"
	"github.com/pfrederiksen/changelog-relay/internal/storage"
	"github.com/pfrederiksen/changelog-relay/internal/watcher"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog-relay",
		Short: "Announce new changelog entries to a chat webhook",
		Long: `A service that polls a changelog page, extracts its dated entries and
posts each entry it has not announced before to a chat webhook.
Announced entries are remembered in a state file across runs.`,
		RunE:          runLoop,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRunCmd(), newOnceCmd(), newPreviewCmd())

	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the changelog forever (default)",
		Args:  cobra.NoArgs,
		RunE:  runLoop,
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single check and exit",
		Args:  cobra.NoArgs,
		RunE:  runOnce,
	}
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show parsed updates and which would be posted, without posting",
		Args:  cobra.NoArgs,
		RunE:  runPreview,
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Include update content in text output")

	return cmd
}

// setup loads config, configures logging and builds the watcher
func setup(cmd *cobra.Command) (*config.Config, *watcher.Watcher, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification disabled for changelog fetches", logger.Fields{
			"url": cfg.ChangelogURL,
		})
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	logger.Debug("Using state store", logger.Fields{"location": store.Path()})

	n, err := newNotifier(cfg, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing %s notifier: %w", cfg.Notifier, err)
	}

	sc := scraper.New(cfg.ChangelogURL, cfg.InsecureSkipVerify)

	w, err := watcher.New(cmd.Context(), sc, n, store, cfg.Interval)
	if err != nil {
		return nil, nil, err
	}

	return cfg, w, nil
}

// stateStore is a watcher.Store that can describe its location
type stateStore interface {
	watcher.Store
	Path() string
}

// newStore picks the Gist store when a gist is configured, the state file otherwise
func newStore(cfg *config.Config) (stateStore, error) {
	if cfg.StateGistID != "" {
		return storage.NewGistStore(cfg.StateGistID, cfg.GitHubToken)
	}
	return storage.New(cfg.StateFile)
}

// newNotifier builds the notifier selected in cfg
func newNotifier(cfg *config.Config, out io.Writer) (notifier.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierWebhook:
		return notifier.NewWebhookNotifier(cfg.WebhookURL)
	case config.NotifierTelegram:
		return notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	case config.NotifierTwitter:
		return notifier.NewTwitterNotifier()
	case config.NotifierDryRun:
		return notifier.NewDryRunNotifier(out), nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", cfg.Notifier)
	}
}

// runLoop is the main command logic
func runLoop(cmd *cobra.Command, args []string) error {
	cfg, w, err := setup(cmd)
	if err != nil {
		return err
	}

	logger.Info("Watching changelog", logger.Fields{
		"url":      cfg.ChangelogURL,
		"notifier": cfg.Notifier,
		"interval": cfg.Interval.String(),
	})

	return w.Run(cmd.Context())
}

func runOnce(cmd *cobra.Command, args []string) error {
	_, w, err := setup(cmd)
	if err != nil {
		return err
	}

	posted, err := w.RunOnce(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %d update(s)\n", posted)
	return err
}

func runPreview(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	// Preview never posts, so it should not need notifier credentials
	if f := cmd.Flags().Lookup("notifier"); f != nil && !f.Changed {
		if err := cmd.Flags().Set("notifier", config.NotifierDryRun); err != nil {
			return err
		}
	}

	cfg, w, err := setup(cmd)
	if err != nil {
		return err
	}

	all, pending, err := w.Pending(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching updates: %w", err)
	}

	result := NewOutputResult(cfg.ChangelogURL, all, pending, time.Now().UTC())
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	logger.Sync() // nolint:errcheck

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
