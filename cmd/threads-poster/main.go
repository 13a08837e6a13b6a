package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaiNageswarS/threads-poster/caption"
	"github.com/SaiNageswarS/threads-poster/cloud"
	"github.com/SaiNageswarS/threads-poster/config"
	"github.com/SaiNageswarS/threads-poster/llm"
	"github.com/SaiNageswarS/threads-poster/logger"
	"github.com/SaiNageswarS/threads-poster/notify"
	"github.com/SaiNageswarS/threads-poster/poster"
	"github.com/SaiNageswarS/threads-poster/threads"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type notifier interface {
	Enabled() bool
	Notify(summary notify.Summary) error
}

// swapped in tests
var (
	loadConfigFn  = config.Load
	newStoreFn    = cloud.ProvideObjectStore
	newNotifierFn = func(token, chatID string) notifier { return notify.NewTelegram(token, chatID) }
	runFn         = run
)

func NewRoot() *cobra.Command {
	return &cobra.Command{
		Use:   "threads-poster",
		Short: "Post one random image from object storage to Threads, then delete it",
		Long: "threads-poster picks a random image from a storage bucket, optionally captions it with Claude,\n" +
			"publishes it to Threads and removes it from the bucket. Configure it through environment\n" +
			"variables, a .env file, or an INI file named by " + config.ConfigFileEnv + ".",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFn(cmd.Context())
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRoot().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("Threads poster failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(ctx context.Context) error {
	cfg, err := loadConfigFn()
	if err != nil {
		logger.Error("Configuration error", zap.Error(err))
		// config did not load, so fall back to the raw environment
		_ = newNotifierFn(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID")).
			Notify(notify.Summary{Err: err})
		return err
	}

	notifier := newNotifierFn(cfg.TelegramBotToken, cfg.TelegramChatID)
	publisher := threads.ProvideClient(cfg)

	store, err := newStoreFn(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialise object storage", zap.String("provider", cfg.StorageProvider), zap.Error(err))
		_ = notifier.Notify(notify.Summary{Account: cfg.UserID, Err: err})
		return err
	}

	var captioner poster.Captioner
	if cfg.CaptioningEnabled() {
		client, err := llm.ProvideAnthropicClient(cfg.AnthropicAPIKey, cfg.CaptionTimeout())
		if err != nil {
			_ = notifier.Notify(notify.Summary{Account: cfg.UserID, Err: err})
			return err
		}
		captioner = caption.ProvideCaptioner(cfg, client)
	}

	report, runErr := poster.ProvidePipeline(cfg, store, captioner, publisher).Run(ctx)

	if notifier.Enabled() {
		summary := notify.Summary{
			Success:   runErr == nil,
			Account:   accountLabel(ctx, publisher, cfg.UserID),
			ObjectKey: report.Object.Key,
			PostID:    report.PostID,
			Err:       runErr,
		}
		if runErr == nil && report.DeleteErr != nil {
			summary.Err = report.DeleteErr
		}
		_ = notifier.Notify(summary)
	}

	if runErr != nil {
		return runErr
	}

	logger.Info("Run complete",
		zap.String("run_id", report.RunID),
		zap.String("object", report.Object.URI()),
		zap.String("postId", report.PostID),
		zap.Bool("deleted", report.Deleted),
		zap.Bool("urlRevoked", report.URLRevoked))
	return nil
}

type profileFetcher interface {
	Profile(ctx context.Context) (*threads.Profile, error)
}

// accountLabel is looked up only after the run so that no Threads call
// happens before an empty bucket aborts it.
func accountLabel(ctx context.Context, fetcher profileFetcher, userID string) string {
	profile, err := fetcher.Profile(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Failed to fetch Threads profile details", zap.Error(err))
		}
		return userID
	}
	return profile.Label(userID)
}
