package main

import (
	"context"
	"log/slog"
	"time"

	"garage/config"
	"garage/internal/infra/auth"
	logs "garage/internal/infra/log"
	"garage/internal/infra/persistence/postgres"
	"garage/internal/usecase"
	"garage/internal/usecase/impl"

	"go.uber.org/fx"
)

const defaultSessionCleanupInterval = time.Hour

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		fx.Invoke(
			startSessionSweeper,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewVehicleRepository,
			postgres.NewTagRepository,
			postgres.NewPartRepository,
			postgres.NewMaintenanceRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewSessionService,
			impl.NewVehicleService,
			impl.NewTagService,
			impl.NewPartService,
			impl.NewMaintenanceService,
		),
	)
}

type sessionSweeperParams struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Logger   *slog.Logger
	Sessions usecase.SessionUsecase
}

// startSessionSweeper periodically removes expired refresh tokens so revoked
// and stale sessions do not pile up in storage.
func startSessionSweeper(params sessionSweeperParams) {
	interval := defaultSessionCleanupInterval
	if params.Config.Sessions != nil && params.Config.Sessions.CleanupInterval > 0 {
		interval = params.Config.Sessions.CleanupInterval
	}

	sweeperCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					select {
					case <-sweeperCtx.Done():
						return
					case <-ticker.C:
						removed, err := params.Sessions.CleanupExpiredSessions(sweeperCtx)
						if err != nil {
							params.Logger.Error("Session cleanup failed", slog.Any("error", err))

							continue
						}
						if removed > 0 {
							params.Logger.Info("Session cleanup completed", slog.Int64("removed", removed))
						}
					}
				}
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})
}
