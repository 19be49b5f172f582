package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reposter/internal/config"
	"reposter/internal/constants"
	"reposter/internal/database"
	"reposter/internal/metrics"
	"reposter/internal/privacy"
	"reposter/internal/retry"
	"reposter/internal/service"
	"reposter/internal/state"
	"reposter/internal/tracing"
	"reposter/pkg/telegram"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
	historyN   = flag.Int("history", 0, "Print the N most recent forward records and exit")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("reposter %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Startup error: %v", err)
	}
}

// run wires the process together and executes a single forwarding run.
// Errors returned from here are fatal startup errors (missing or inconsistent
// configuration, unusable credentials) and exit non-zero before any state is
// touched. Errors inside the run itself are log-only: the state file has
// already advanced by then and the next trigger simply picks up the rotation.
func run(ctx context.Context) error {
	// Optional .env for local invocations; scheduled runners set real env vars.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	configureLogLevel(logger)

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting reposter")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !*verbose && cfg.LogLevel != "" {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(level)
		} else {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
		}
	}

	tracingManager := tracing.NewTracingManager(tracing.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
		UseStdout:      cfg.Tracing.UseStdout,
	}, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Initialize the history database with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})
	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	defer func() { _ = db.Close() }()

	if *historyN > 0 {
		return printHistory(ctx, db, *historyN)
	}

	stateStore, err := state.NewStore(cfg.StatePath, logger)
	if err != nil {
		return fmt.Errorf("failed to create state store: %w", err)
	}

	pairs, err := service.NewPairList(cfg.Channels)
	if err != nil {
		return fmt.Errorf("invalid channel configuration: %w", err)
	}

	creds, err := telegramCredentials()
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields(privacy.MaskSensitiveFields(map[string]interface{}{
		"api_hash": creds.APIHash,
		"session":  creds.Session,
	}))).Debug("Telegram credentials loaded")

	mtproto, err := telegram.NewMTProtoClient(creds, logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}

	// The rotation advances before the session opens and is persisted after it
	// closes, so a pair whose connection or fetch always fails cannot starve
	// the rest of the rotation.
	runner := service.NewRunner(cfg, pairs, stateStore, db, logger)
	if err := runner.Begin(); err != nil {
		return fmt.Errorf("failed to prepare run: %w", err)
	}

	err = mtproto.Run(ctx, func(ctx context.Context, client telegram.Client) error {
		return runner.Run(ctx, client)
	})
	runner.Finish()
	if err != nil {
		// The rotation index is persisted above; the failure surface is the log.
		logger.WithError(err).WithFields(logrus.Fields(metrics.Snapshot())).Error("Run finished with error")
	} else {
		logger.WithFields(logrus.Fields(metrics.Snapshot())).Info("Run finished")
	}

	return nil
}

func printHistory(ctx context.Context, db *database.Database, limit int) error {
	records, err := db.GetRecentForwards(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read forward history: %w", err)
	}
	for _, rec := range records {
		fmt.Printf("%s  %s -> %s  message=%d album=%d status=%s\n",
			rec.ForwardedAt.Format(time.RFC3339), rec.SourceChannel, rec.DestChannel,
			rec.MessageID, rec.AlbumSize, rec.Status)
	}
	return nil
}

func configureLogLevel(logger *logrus.Logger) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func telegramCredentials() (telegram.MTProtoConfig, error) {
	apiIDStr := strings.TrimSpace(os.Getenv("TELEGRAM_API_ID"))
	if apiIDStr == "" {
		return telegram.MTProtoConfig{}, fmt.Errorf("TELEGRAM_API_ID environment variable is required")
	}
	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil {
		return telegram.MTProtoConfig{}, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	apiHash := strings.TrimSpace(os.Getenv("TELEGRAM_API_HASH"))
	if apiHash == "" {
		return telegram.MTProtoConfig{}, fmt.Errorf("TELEGRAM_API_HASH environment variable is required")
	}

	session := strings.TrimSpace(os.Getenv("TELEGRAM_SESSION"))
	if session == "" {
		return telegram.MTProtoConfig{}, fmt.Errorf("TELEGRAM_SESSION environment variable is required")
	}

	return telegram.MTProtoConfig{APIID: apiID, APIHash: apiHash, Session: session}, nil
}
