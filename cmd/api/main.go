package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mediagen/internal/events"
	"mediagen/internal/http/handlers"
	httpapi "mediagen/internal/http/httpapi"
	"mediagen/internal/infra"
	"mediagen/internal/orchestrator"
	"mediagen/internal/poller"
	"mediagen/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	registry, mirror, err := buildRegistry(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure providers")
	}
	logger.Info().
		Strs("services", registry.ServiceNames()).
		Interface("capabilities", registry.Capabilities()).
		Msg("providers resolved")

	jobs, jobsCloser, err := buildJobStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open job store")
	}
	defer jobsCloser.Close()

	conversations, convCloser, err := buildConversationStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open conversation store")
	}
	defer convCloser.Close()

	files, err := storage.NewFileStore(cfg.ArtifactDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare artifact directory")
	}
	persister, err := storage.NewPersister(storage.PersisterOptions{
		Files:   files,
		Mirror:  mirror,
		BaseURL: cfg.ArtifactBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build persister")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL)
		if err != nil {
			logger.Error().Err(err).Msg("job events disabled: amqp unavailable")
		} else {
			publisher = amqpPub
		}
	}
	defer publisher.Close()

	video, _ := registry.Video()
	poll, err := poller.New(poller.Options{
		Jobs:        jobs,
		Video:       video,
		Persister:   persister,
		Events:      publisher,
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build poller")
	}
	if video != nil {
		resumed, err := poll.Resume(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to resume video jobs")
		} else if resumed > 0 {
			logger.Info().Int("jobs", resumed).Msg("resumed video jobs")
		}
	}

	svc, err := orchestrator.New(orchestrator.Options{
		Registry:      registry,
		Jobs:          jobs,
		Conversations: conversations,
		Persister:     persister,
		Poller:        poll,
		Retry: orchestrator.RetryPolicy{
			Attempts:  cfg.RetryAttempts,
			BaseDelay: cfg.RetryBaseDelay,
		},
		Logger:        &logger,
		PublicBaseURL: cfg.PublicBaseURL,
		ScriptPath:    cfg.MediaPathPrefix + "/call/twiml",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	app := handlers.NewApp(svc, &logger)
	router := httpapi.NewRouter(app, httpapi.RouterConfigFrom(cfg))
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("media API listening on :%s%s", cfg.Port, cfg.MediaPathPrefix)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	poll.Stop()
	logger.Info().Msg("server stopped")
}
