package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/internal/appconfig"
	"github.com/calebmoore/tweetwatch/pkg/api"
	"github.com/calebmoore/tweetwatch/pkg/collector"
	"github.com/calebmoore/tweetwatch/pkg/db"
	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/interfaces/twitter"
	"github.com/calebmoore/tweetwatch/pkg/llm/openai"
	"github.com/calebmoore/tweetwatch/pkg/logging"
	"github.com/calebmoore/tweetwatch/pkg/notify"
	"github.com/calebmoore/tweetwatch/pkg/reconcile"
	"github.com/calebmoore/tweetwatch/pkg/scheduler"
	"github.com/calebmoore/tweetwatch/pkg/store"
	"github.com/calebmoore/tweetwatch/pkg/summarize"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	// Initialize logger
	log := logrus.New()
	if os.Getenv("LOG_FORMAT") == "text" {
		log.SetFormatter(logging.NewColoredJSONFormatter())
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Get log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		if logLevel != "" {
			log.WithFields(logrus.Fields{
				"attempted_level": logLevel,
				"default_level":   "INFO",
			}).Warn("Invalid log level specified, defaulting to INFO")
		}
	}

	appCfg, err := appconfig.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load application config")
	}

	database, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up database")
	}
	st := store.New(database, log)

	// Initialize API client
	twitterConfig, err := twitter.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create API config")
	}
	twitterConfig.Logger = log
	twitterClient, err := twitter.NewClient(twitterConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create API client")
	}

	// Initialize LLM client
	llmConfig, err := openai.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create LLM config")
	}
	llmConfig.Logger = log
	llmClient, err := openai.NewClient(llmConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create LLM client")
	}

	// Optional Telegram delivery
	notifier, err := notify.NewTelegramFromEnv(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure Telegram delivery")
	}

	rec := reconcile.New(st, log)
	coll := collector.New(twitterClient, st, rec, log, collector.Config{})

	summarizerOpts := []summarize.Option{}
	if notifier != nil {
		summarizerOpts = append(summarizerOpts, summarize.WithNotifier(notifier))
	}
	summarizer := summarize.New(st, llmClient, log, summarizerOpts...)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed the tracked account set before the first cycle
	for _, handle := range appCfg.TrackedHandles {
		if _, err := coll.TrackAccount(ctx, handle); err != nil {
			log.WithError(err).WithField("handle", handle).Error("Failed to seed tracked account")
		}
	}

	sched := scheduler.New(log)

	registerJobs(sched, appCfg, coll, summarizer, st, log)

	server := api.NewServer(st, summarizer, api.Config{
		Addr:   appCfg.ListenAddr,
		Logger: log,
	})

	sched.Start()
	go func() {
		if err := server.Run(); err != nil {
			log.WithError(err).Error("API server stopped")
			cancel()
		}
	}()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown failed")
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("Timed out waiting for running jobs")
	}

	log.Info("Shutdown complete")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *appconfig.Config,
	coll *collector.Collector,
	summarizer *summarize.Summarizer,
	st *store.Store,
	log *logrus.Logger,
) {
	mustAdd := func(name, schedule string, job scheduler.Job) {
		if err := sched.AddJob(name, schedule, job); err != nil {
			log.WithError(err).WithField("job", name).Fatal("Failed to register job")
		}
	}

	mustAdd("collect", cfg.CollectionSchedule, func(ctx context.Context) error {
		_, err := coll.RunCycle(ctx)
		return err
	})

	if cfg.ReferenceAccountID != "" {
		mustAdd("followings-sync", cfg.FollowingsSchedule, func(ctx context.Context) error {
			_, _, err := coll.SyncFollowings(ctx, cfg.ReferenceAccountID)
			return err
		})
	}

	summaryJobs := []struct {
		period   models.SummaryPeriod
		schedule string
	}{
		{models.PeriodShort, cfg.ShortSummarySchedule},
		{models.PeriodMedium, cfg.MediumSummarySchedule},
		{models.PeriodLong, cfg.LongSummarySchedule},
	}
	for _, sj := range summaryJobs {
		sj := sj
		mustAdd("summary-"+string(sj.period), sj.schedule, func(ctx context.Context) error {
			_, err := summarizer.Generate(ctx, sj.period)
			return err
		})
	}

	if cfg.PostRetentionDays > 0 {
		mustAdd("purge", "@daily", func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -cfg.PostRetentionDays)
			dropped, err := st.PurgePostsBefore(cutoff)
			if err != nil {
				return err
			}
			log.WithField("dropped", dropped).Info("Old posts purged")
			return nil
		})
	}
}
