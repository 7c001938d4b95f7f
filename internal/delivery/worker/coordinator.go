// Package worker runs the service body: a single background worker that brings
// up the credential store and then idles until cancelled, reporting progress to
// a sink over an ordered channel.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"peerbackup/config"
	deliverycontext "peerbackup/internal/delivery/context"
	"peerbackup/internal/domain/entity"
	"peerbackup/internal/domain/lifecycle"
	"peerbackup/internal/domain/service"
	"peerbackup/internal/errors"
	"peerbackup/internal/usecase"

	"go.uber.org/fx"
)

const defaultReportBuffer = 16

// ErrNotStopped is returned by Start when a run is already in progress.
var ErrNotStopped = errors.New("service is not stopped")

// Coordinator owns the service state machine and the background worker.
//
// States move Stopped -> StartPending -> Running -> StopPending -> Stopped.
// A worker that fails during startup never reaches Running; the coordinator
// still returns to Stopped on its own once the worker exits.
type Coordinator struct {
	store        usecase.StoreInitializer
	sink         service.ReportingSink
	logger       *slog.Logger
	reportBuffer int
	stopTimeout  time.Duration

	mu     sync.Mutex
	state  lifecycle.State
	cancel context.CancelFunc
	done   chan struct{}

	// emitMu keeps sink output sequential between the report pump and
	// messages emitted directly by Start/Stop/Shutdown.
	emitMu sync.Mutex
}

// Params holds dependencies for the Coordinator, injected by Fx.
type Params struct {
	fx.In

	Store  usecase.StoreInitializer
	Sink   service.ReportingSink
	Config *config.Config
	Logger *slog.Logger
}

// NewCoordinator creates a stopped Coordinator.
func NewCoordinator(params Params) *Coordinator {
	c := &Coordinator{
		store:        params.Store,
		sink:         params.Sink,
		logger:       params.Logger,
		reportBuffer: defaultReportBuffer,
		state:        lifecycle.Stopped,
	}
	if params.Config != nil {
		if params.Config.Worker.ReportBuffer > 0 {
			c.reportBuffer = params.Config.Worker.ReportBuffer
		}
		c.stopTimeout = params.Config.Worker.StopTimeout
	}

	return c
}

// State returns the current service state.
func (c *Coordinator) State() lifecycle.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Done is closed when the current run has fully stopped, whether by Stop or
// because the worker gave up during startup. It is nil before the first Start.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.done
}

// Start schedules the worker and returns without waiting for it.
// The worker does not inherit ctx: it runs until Stop or Shutdown.
func (c *Coordinator) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != lifecycle.Stopped {
		return errors.Wrapf(ErrNotStopped, "cannot start from %s", c.state)
	}

	c.setStateLocked(lifecycle.StartPending)
	c.emit(entity.SeverityInfo, "Starting.")

	runID := deliverycontext.NewRunID()
	runLogger := c.logger.With(slog.String("runID", runID))

	ctx, cancel := context.WithCancel(context.Background())
	ctx = deliverycontext.WithRunID(ctx, runID)
	ctx = deliverycontext.WithLogger(ctx, runLogger)

	reports := make(chan entity.WorkerReport, c.reportBuffer)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(reports)
		c.run(ctx, reports)
	}()
	go c.pump(runLogger, reports, cancel, done)

	runLogger.Info("Worker scheduled")

	return nil
}

// Stop requests cancellation and waits for the worker to exit, bounded by ctx
// and the configured stop timeout. Stopping a stopped service is a no-op.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state == lifecycle.Stopped {
		c.mu.Unlock()

		return nil
	}

	announce := c.state != lifecycle.StopPending
	if announce {
		c.setStateLocked(lifecycle.StopPending)
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if announce {
		c.emit(entity.SeverityInfo, "Stopping.")
	}
	cancel()

	waitCtx := ctx
	if c.stopTimeout > 0 {
		var cancelWait context.CancelFunc
		waitCtx, cancelWait = context.WithTimeout(ctx, c.stopTimeout)
		defer cancelWait()
	}

	select {
	case <-done:
		return nil
	case <-waitCtx.Done():
		return errors.Wrap(waitCtx.Err(), "worker did not stop in time")
	}
}

// Shutdown is Stop for a terminating host.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.emit(entity.SeverityInfo, "Shutdown.")

	return c.Stop(ctx)
}

// pump delivers reports to the sink one at a time, in emission order, and
// completes the run once the worker has closed the channel.
func (c *Coordinator) pump(logger *slog.Logger, reports <-chan entity.WorkerReport, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)

	for rep := range reports {
		c.deliver(logger, rep)
	}

	cancel()
	c.emit(entity.SeverityInfo, "Stopped.")

	c.mu.Lock()
	c.setStateLocked(lifecycle.Stopped)
	c.cancel = nil
	c.mu.Unlock()
}

func (c *Coordinator) deliver(logger *slog.Logger, rep entity.WorkerReport) {
	c.emitMu.Lock()
	for _, msg := range rep.Messages() {
		c.sink.Emit(msg.Severity, msg.Text)
	}
	c.emitMu.Unlock()

	if !rep.SetServiceState {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Only a starting service may be promoted; a stop request wins over a late Running report.
	if rep.ServiceState == lifecycle.Running && c.state != lifecycle.StartPending {
		logger.Debug("Ignoring state request", slog.String("requested", rep.ServiceState.String()), slog.String("state", c.state.String()))

		return
	}
	c.setStateLocked(rep.ServiceState)
}

func (c *Coordinator) emit(severity entity.Severity, text string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.sink.Emit(severity, text)
}

func (c *Coordinator) setStateLocked(next lifecycle.State) {
	if c.state == next {
		return
	}

	c.logger.Info("Service state changed",
		slog.String("from", c.state.String()),
		slog.String("to", next.String()),
	)
	c.state = next
}
