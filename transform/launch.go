package transform

import (
	"fmt"
	"sort"
	"time"

	"github.com/ghodss/yaml"
	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/stats"
	"golang.org/x/net/context"
)

// LaunchOptions control a single run of a graph.
type LaunchOptions struct {
	MaxActiveTasks int          // tasks allowed to run at once; defaults to constants.DefaultMaxActiveTasks.
	Stats          StatsManager // optional.
}

// ParsePipelineDefinition unmarshals a JSON or YAML pipeline definition.
func ParsePipelineDefinition(b []byte) (*PipelineDefinition, error) {
	p := &PipelineDefinition{}
	if err := yaml.Unmarshal(b, p); err != nil { // YAML is a superset of JSON.
		return nil, err
	}
	return p, nil
}

// Validate checks mandatory fields, default args and the schedule.
func (p *PipelineDefinition) Validate() error {
	if err := helper.ValidateStructIsPopulated(p); err != nil {
		return err
	}
	if err := p.DefaultArgs.Validate(); err != nil {
		return err
	}
	if p.Schedule != "" {
		if _, err := ParseSchedule(p.Schedule); err != nil {
			return err
		}
	}
	if p.MaxActiveTasks < 0 {
		return fmt.Errorf("maxActiveTasks must not be negative")
	}
	return nil
}

// BuildGraph builds every task in p using the registered task builders and wires the edges.
func BuildGraph(log logger.Logger, p *PipelineDefinition, rm ResourceManager) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := NewGraph(p.DagID)
	names := make([]string, 0, len(p.Tasks))
	for name := range p.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		td := p.Tasks[name]
		builder, err := getTaskBuilder(td.Type)
		if err != nil {
			return nil, fmt.Errorf("task %q: %v", name, err)
		}
		t, err := builder(log, name, td, rm)
		if err != nil {
			return nil, fmt.Errorf("task %q: %v", name, err)
		}
		if err = g.AddTask(name, td.Type, t); err != nil {
			return nil, err
		}
	}
	for _, e := range p.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// PlanGraph builds the shape of p without opening connections or building tasks.
// Each node is a NoOp placeholder; task types are still checked against the registry.
func PlanGraph(p *PipelineDefinition) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := NewGraph(p.DagID)
	for name, td := range p.Tasks {
		if _, err := getTaskBuilder(td.Type); err != nil {
			return nil, fmt.Errorf("task %q: %v", name, err)
		}
		if err := g.AddTask(name, td.Type, components.NewNoOp(&components.NoOpConfig{Name: name})); err != nil {
			return nil, err
		}
	}
	for _, e := range p.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

type taskResult struct {
	name string
	err  error
}

// Launch executes every task of g once, respecting its edges.
// Tasks without a dependency between them run concurrently up to MaxActiveTasks.
// A failed task causes all of its downstream tasks to be marked upstream_failed without running;
// independent branches carry on. The first task error is returned.
// Cancelling ctx stops new tasks from starting and Launch returns once running tasks finish.
func Launch(ctx context.Context, log logger.Logger, g *Graph, rc *components.RunContext, opts LaunchOptions) error {
	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}
	maxActive := opts.MaxActiveTasks
	if maxActive <= 0 {
		maxActive = constants.DefaultMaxActiveTasks
	}
	s := opts.Stats
	if s == nil {
		s = stats.NewMockStatsManager()
	}
	if rc.Rows == nil {
		runCtx := *rc
		runCtx.Rows = s
		rc = &runCtx
	}
	position := make(map[string]int, len(order))
	inDegree := make(map[string]int, len(order))
	watchers := make(map[string]*stats.TaskWatcher, len(order))
	ready := make([]string, 0)
	for idx, name := range order {
		position[name] = idx
		inDegree[name] = len(g.Upstream(name))
		watchers[name] = s.AddTaskWatcher(name)
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	s.StartDumping()
	defer s.StopDumping()

	results := make(chan taskResult, len(order))
	skipped := make(map[string]bool)
	running, finished := 0, 0
	var firstErr error
	for finished < len(order) {
		for ctx.Err() == nil && running < maxActive && len(ready) > 0 {
			name := ready[0]
			ready = ready[1:]
			running++
			go runTask(ctx, log, g, name, rc, watchers[name], results)
		}
		if running == 0 {
			break // cancelled, or everything left is blocked.
		}
		r := <-results
		running--
		finished++
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			finished += skipDownstream(log, g, r.name, skipped, watchers)
			continue
		}
		for _, d := range g.Downstream(r.name) {
			inDegree[d]--
			if inDegree[d] == 0 && !skipped[d] {
				ready = append(ready, d)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return position[ready[i]] < position[ready[j]] })
	}
	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		log.Warn("run ", rc.RunID, " of ", g.DagID, " cancelled: ", err)
		return err
	}
	return nil
}

// runTask executes one task and converts a panic into an error.
func runTask(ctx context.Context, log logger.Logger, g *Graph, name string, rc *components.RunContext, w *stats.TaskWatcher, results chan<- taskResult) {
	var err error
	t, _ := g.Task(name)
	w.Start()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", name, r)
		}
		w.Finish(err)
		if err != nil {
			log.Error("task ", name, " failed after ", time.Since(start).Truncate(time.Millisecond), ": ", err)
		} else {
			log.Info("task ", name, " succeeded in ", time.Since(start).Truncate(time.Millisecond))
		}
		results <- taskResult{name: name, err: err}
	}()
	log.Info("starting task ", name, " (", g.TaskType(name), ")")
	err = t.Execute(ctx, rc)
}

// skipDownstream marks every transitive dependent of failed as upstream_failed and returns how many were newly marked.
func skipDownstream(log logger.Logger, g *Graph, failed string, skipped map[string]bool, watchers map[string]*stats.TaskWatcher) int {
	n := 0
	queue := g.Downstream(failed)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if skipped[name] {
			continue
		}
		skipped[name] = true
		watchers[name].Skip()
		log.Warn("task ", name, " will not run because upstream task ", failed, " failed")
		n++
		queue = append(queue, g.Downstream(name)...)
	}
	return n
}
