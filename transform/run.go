package transform

import (
	"time"

	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/stats"
	"golang.org/x/net/context"
)

// RunOptions control LaunchPipelineDefinition.
type RunOptions struct {
	BlockUntilComplete bool
	StatsDumpFrequency time.Duration
	LogicalDate        time.Time // zero means the most recent schedule tick.
	Params             map[string]string
	CleanupHandlerFn   CleanupHandlerFunc // defaults to CleanupHandlerDefault.
	ManagerOptions     []RunManagerOption
}

// LaunchPipelineDefinition validates p, builds its graph and launches one run.
// It stores the run in ri and returns its id.
// With BlockUntilComplete the error of the run is returned; otherwise the run continues in a goroutine
// and its outcome is recorded in ri.
func LaunchPipelineDefinition(log logger.Logger, ri *SafeMapRunInfo, p *PipelineDefinition, opts RunOptions) (runID string, err error) {
	logicalDate := opts.LogicalDate
	if logicalDate.IsZero() {
		if logicalDate, err = p.LogicalDate(time.Now()); err != nil {
			return
		}
	}
	rm := NewRunManager(log, p, opts.ManagerOptions...)
	g, err := BuildGraph(log, p, rm)
	if err != nil {
		rm.shutdown()
		return
	}
	rc := components.NewRunContext(logicalDate, opts.Params)
	runID = rc.RunID
	s := stats.NewRunStats(log, stats.SetStatsDumpFrequency(opts.StatsDumpFrequency))
	chanStatus := make(chan RunStatus, 1)
	chanShutdown := make(chan error, 1)
	closer := NewRunCloser(chanStatus, chanShutdown)
	ri.Store(runID, RunInfo{
		RunID:       runID,
		DagID:       p.DagID,
		LogicalDate: logicalDate,
		Closer:      closer,
		Stats:       s,
		Status:      RunStatus{Status: StatusStarting, StartTime: time.Now()},
	})
	go ri.ConsumeRunStatusChanges(runID, chanStatus)
	cleanupFn := opts.CleanupHandlerFn
	if cleanupFn == nil {
		cleanupFn = CleanupHandlerDefault
	}
	maxActive := p.MaxActiveTasks
	run := func() error {
		defer rm.shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go cleanupFn(log, runID, closer, cancel, ctx.Done())
		closer.SendStatus(RunStatus{Status: StatusRunning})
		log.Info("Launching run ", runID, " of ", p.DagID, " for logical date ", logicalDate.Format(time.RFC3339))
		e := Launch(ctx, log, g, rc, LaunchOptions{MaxActiveTasks: maxActive, Stats: s})
		switch {
		case e == nil:
			closer.CloseChannels(&RunStatus{Status: StatusSuccess})
		case ctx.Err() != nil && e == ctx.Err():
			closer.CloseChannels(&RunStatus{Status: StatusShutdown})
		default:
			closer.CloseChannels(&RunStatus{Status: StatusFailed, Error: e.Error()})
		}
		return e
	}
	if opts.BlockUntilComplete {
		err = run()
		return
	}
	go func() {
		if e := run(); e != nil {
			log.Error("run ", runID, " failed: ", e)
		}
	}()
	return
}
