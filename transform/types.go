package transform

import (
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// PipelineDefinition describes a graph of tasks and the connections they use.
type PipelineDefinition struct {
	SchemaVersion  int                       `json:"schemaVersion" errorTxt:"schema version" mandatory:"no"`
	DagID          string                    `json:"dagId" errorTxt:"dag id" mandatory:"yes"`
	Description    string                    `json:"description,omitempty" errorTxt:"description" mandatory:"no"`
	Schedule       string                    `json:"schedule,omitempty"` // cron expression; empty means manual runs only.
	DefaultArgs    DefaultArgs               `json:"defaultArgs"`
	MaxActiveTasks int                       `json:"maxActiveTasks,omitempty"`
	Connections    shared.DBConnections      `json:"connections" errorTxt:"connections" mandatory:"yes"`
	Tasks          map[string]TaskDefinition `json:"tasks" errorTxt:"tasks" mandatory:"yes"`
	Edges          []Edge                    `json:"edges"`
}

// TaskDefinition names a registered task type and the string settings it is built from.
type TaskDefinition struct {
	Type string            `json:"type" errorTxt:"task type" mandatory:"yes"`
	Data map[string]string `json:"data,omitempty"`
}

// Edge means To may start only after From has succeeded.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DefaultArgs are declared once per graph and apply to every task.
// They are carried for the external scheduler; retries are not attempted by the local launcher.
type DefaultArgs struct {
	Owner          string `json:"owner" errorTxt:"owner" mandatory:"yes"`
	StartDate      string `json:"startDate" errorTxt:"start date" mandatory:"yes"` // YYYY-MM-DD
	DependsOnPast  bool   `json:"dependsOnPast"`
	Catchup        bool   `json:"catchup"`
	Retries        int    `json:"retries"`
	RetryDelay     string `json:"retryDelay,omitempty"` // Go duration, e.g. 5m
	EmailOnRetry   bool   `json:"emailOnRetry"`
	EmailOnFailure bool   `json:"emailOnFailure"`
}
