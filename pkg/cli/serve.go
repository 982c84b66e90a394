package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TechXTT/tidbreader/internal/api"
	"github.com/TechXTT/tidbreader/internal/logger"
	"github.com/TechXTT/tidbreader/internal/repository"
	"github.com/TechXTT/tidbreader/internal/service"
	"github.com/TechXTT/tidbreader/pkg/config"
	"github.com/TechXTT/tidbreader/pkg/runtime"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the `serve` command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	pool := runtime.NewPool(runtime.PoolConfigFrom(cfg))
	repo := repository.NewUserRepository(pool, cfg.Table)
	svc := service.NewUserService(repo)

	srv := api.NewServer(api.Options{
		Addr:            cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, svc, pool)
	return srv.Run(ctx)
}

// loadConfig resolves the environment and brings the global logger up
// with the configured level and format.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Debug().Interface("config", cfg.Redacted()).Msg("configuration loaded")
	return cfg, nil
}
