package sink

import (
	"log/slog"
	"os"

	"peerbackup/config"
	"peerbackup/internal/domain/service"
	"peerbackup/internal/errors"

	"go.uber.org/fx"
)

// Params holds dependencies for the ReportingSink, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New selects the sink named by sink.mode.
func New(params Params) (service.ReportingSink, error) {
	cfg := params.Config.Sink

	switch cfg.Mode {
	case config.SinkConsole, "":
		return NewConsoleSink(os.Stdout, cfg.Prefix), nil
	case config.SinkEventLog:
		return NewEventLogSink(params.Logger, cfg.Prefix), nil
	default:
		return nil, errors.Errorf("unsupported sink mode: %s", cfg.Mode)
	}
}
