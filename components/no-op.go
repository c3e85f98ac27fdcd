package components

import (
	"github.com/relloyd/sparkpipe/logger"
	"golang.org/x/net/context"
)

type NoOpConfig struct {
	Log  logger.Logger
	Name string
}

// NoOp marks the start and end of a graph.
type NoOp struct {
	cfg NoOpConfig
}

func NewNoOp(cfg *NoOpConfig) *NoOp {
	if cfg.Log == nil {
		cfg.Log = logger.NullLogger{}
	}
	return &NoOp{cfg: *cfg}
}

func (n *NoOp) Execute(ctx context.Context, rc *RunContext) error {
	n.cfg.Log.Info(n.cfg.Name, " complete")
	return nil
}
