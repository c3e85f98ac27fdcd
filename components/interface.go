package components

import (
	"time"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/rs/xid"
	"golang.org/x/net/context"
)

// Task is a unit of work in a pipeline graph.
// Implementations are built once and executed once per run.
type Task interface {
	Execute(ctx context.Context, rc *RunContext) error
}

// RowsRecorder receives the number of rows affected by each statement a task runs.
type RowsRecorder interface {
	RecordRows(taskName string, rows int64)
}

// RunContext is everything a task may know about the run that invoked it.
type RunContext struct {
	RunID       string
	LogicalDate time.Time
	Params      map[string]string
	Rows        RowsRecorder // optional
}

// NewRunContext returns a RunContext with a fresh run id.
func NewRunContext(logicalDate time.Time, params map[string]string) *RunContext {
	if params == nil {
		params = make(map[string]string)
	}
	return &RunContext{
		RunID:       xid.New().String(),
		LogicalDate: logicalDate.UTC(),
		Params:      params,
	}
}

// TemplateVars returns the variables available to ${...} templates.
// Params override the built-in names.
func (rc *RunContext) TemplateVars() map[string]string {
	d := rc.LogicalDate
	m := map[string]string{
		"ds":        d.Format(constants.TimeFormatDs),
		"ds_nodash": d.Format(constants.TimeFormatDsNoDash),
		"ts":        d.Format(time.RFC3339),
		"ts_nodash": d.Format(constants.TimeFormatYearSeconds),
		"year":      d.Format("2006"),
		"month":     d.Format("01"),
		"day":       d.Format("02"),
		"hour":      d.Format("15"),
		"run_id":    rc.RunID,
	}
	for k, v := range rc.Params {
		m[k] = v
	}
	return m
}

// Render expands ${...} references in s using TemplateVars.
func (rc *RunContext) Render(s string) (string, error) {
	return helper.RenderTemplate(s, rc.TemplateVars())
}

func (rc *RunContext) recordRows(taskName string, rows int64) {
	if rc != nil && rc.Rows != nil {
		rc.Rows.RecordRows(taskName, rows)
	}
}
