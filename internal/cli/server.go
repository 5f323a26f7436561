package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-spark-service/internal/config"
	redisstore "daily-spark-service/internal/infra/redis"
	transport "daily-spark-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, false); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	log := c.log

	ctx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	if c.redis != nil {
		relay := redisstore.NewRelay(c.redis, c.broadcaster, log)
		go func() {
			if err := relay.Run(ctx, nil); err != nil {
				log.WithError(err).Error("invalidation relay stopped")
			}
		}()
	}

	minAnswer := cfg.Practice.MinAnswer()
	handler := transport.NewRouter(
		transport.NewAPIHandler(c.service, minAnswer, log),
		transport.NewWSHandler(c.service, c.broadcaster, minAnswer, log),
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infof("starting practice service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
