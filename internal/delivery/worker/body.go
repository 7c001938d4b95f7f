package worker

import (
	"context"
	"fmt"
	"log/slog"

	deliverycontext "peerbackup/internal/delivery/context"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/entity"
	"peerbackup/internal/domain/lifecycle"
)

// run is the worker body. It prepares the store, announces Running, and then
// waits for cancellation. Every exit path, including a panic, ends with a
// "Shutting Down." report.
func (c *Coordinator) run(ctx context.Context, reports chan<- entity.WorkerReport) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger)

	defer func() {
		reports <- entity.Info("Shutting Down.")
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker panicked", slog.Any("panic", r))
			reports <- entity.Failure(fmt.Sprintf("Exception: %v", r))
		}
	}()

	if !c.prepareStore(ctx, logger, reports) {
		return
	}

	reports <- entity.WorkerReport{
		LogMessage:      "Started.",
		ServiceState:    lifecycle.Running,
		SetServiceState: true,
	}
	logger.Info("Worker started")

	<-ctx.Done()

	logger.Info("Worker cancelled")
}

// prepareStore formats a fresh store when needed and then opens it.
// It reports false when the worker must not proceed to Running.
func (c *Coordinator) prepareStore(ctx context.Context, logger *slog.Logger, reports chan<- entity.WorkerReport) bool {
	formatted, err := c.store.IsFormatted(ctx)
	if err != nil {
		c.reportFailure(ctx, logger, reports, "Unable to start the database.", err)

		return false
	}

	if !formatted {
		reports <- entity.Info("No system database file. Creating a new one.")
		if err := c.store.FormatNewDatabase(ctx); err != nil {
			c.reportFailure(ctx, logger, reports, "Unable to format the database.", err)

			return false
		}
	}

	if err := c.store.InitDatabase(ctx); err != nil {
		c.reportFailure(ctx, logger, reports, "Unable to start the database.", err)

		return false
	}

	return ctx.Err() == nil
}

// reportFailure logs the full error and sends the operator-facing message.
// Failures caused by cancellation are logged only.
func (c *Coordinator) reportFailure(ctx context.Context, logger *slog.Logger, reports chan<- entity.WorkerReport, prefix string, err error) {
	if ctx.Err() != nil {
		logger.Info("Startup interrupted", slog.String("stage", prefix), slog.Any("error", err))

		return
	}

	logger.Error("Worker startup failed", slog.String("stage", prefix), slog.Any("error", err))
	reports <- entity.Failure(prefix + " " + domainerrors.MessageOf(err))
}
