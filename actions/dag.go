package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/sparkpipe/transform"
)

type DagConfig struct {
	PipelineFile       string
	Sparkify           *SparkifyConfig
	Format             string
	IncludeConnections bool
	Connections        ConnectionLoader
	Out                io.Writer
}

// RunDagExport writes the pipeline definition as YAML or JSON.
func RunDagExport(cfg *DagConfig) error {
	p, err := GetPipeline(cfg.PipelineFile, cfg.Sparkify)
	if err != nil {
		return err
	}
	if cfg.IncludeConnections {
		if err = loadConnectionDataIfMissing(cfg.Connections, p); err != nil {
			return err
		}
	}
	format := cfg.Format
	if format == "" {
		format = OutputFormatYaml
	}
	return outputPipelineDefinition(p, out(cfg.Out), format, cfg.IncludeConnections)
}

// RunDagOrder prints the tasks in the order a sequential run would execute them, with their upstream tasks.
func RunDagOrder(cfg *DagConfig) error {
	p, err := GetPipeline(cfg.PipelineFile, cfg.Sparkify)
	if err != nil {
		return err
	}
	g, err := transform.PlanGraph(p)
	if err != nil {
		return err
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}
	w := out(cfg.Out)
	for idx, name := range order {
		line := fmt.Sprintf("%2d. %v (%v)", idx+1, name, g.TaskType(name))
		if up := g.Upstream(name); len(up) > 0 {
			line += " <- " + strings.Join(up, ", ")
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
