package main

import (
	"context"
	"log/slog"

	"peerbackup/config"
	"peerbackup/internal/delivery/worker"
	"peerbackup/internal/infra/auth"
	logs "peerbackup/internal/infra/log"
	"peerbackup/internal/infra/persistence/sqlite"
	"peerbackup/internal/infra/sink"
	"peerbackup/internal/usecase"
	"peerbackup/internal/usecase/impl"

	"go.uber.org/fx"
)

type runCoordinatorParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Coordinator *worker.Coordinator
	Logger      *slog.Logger
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			runCoordinator,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		sqlite.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewUserRepository,
			sqlite.NewAuditRepository,
			sqlite.NewSystemRepository,
			sqlite.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewSHA256Hasher,
			sink.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCredentialService,
			newStoreInitializer,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			worker.NewCoordinator,
		),
	)
}

// newStoreInitializer narrows the credential store to what the worker needs.
func newStoreInitializer(credentials usecase.CredentialUsecase) usecase.StoreInitializer {
	return credentials
}

// runCoordinator ties the service state machine to the host lifecycle.
// A worker that exits on its own (a failed startup) takes the process down.
func runCoordinator(params runCoordinatorParams) {
	stopping := make(chan struct{})

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Coordinator.Start(ctx); err != nil {
				return err
			}

			done := params.Coordinator.Done()
			go func() {
				select {
				case <-done:
					params.Logger.Error("Worker exited before shutdown was requested")
					if err := params.Shutdown(fx.ExitCode(1)); err != nil {
						params.Logger.Error("Failed to request shutdown", slog.Any("error", err))
					}
				case <-stopping:
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stopping)

			return params.Coordinator.Shutdown(ctx)
		},
	})
}
