package stats

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// TaskState is the lifecycle state of a single task within a run.
type TaskState uint32

const (
	TaskStateQueued TaskState = iota + 1
	TaskStateRunning
	TaskStateSuccess
	TaskStateFailed
	TaskStateUpstreamFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskStateQueued:
		return "queued"
	case TaskStateRunning:
		return "running"
	case TaskStateSuccess:
		return "success"
	case TaskStateFailed:
		return "failed"
	case TaskStateUpstreamFailed:
		return "upstream_failed"
	}
	return ""
}

func (s TaskState) MarshalJSON() ([]byte, error) {
	if s.String() == "" {
		return nil, fmt.Errorf("unhandled TaskState value %v in custom MarshalJSON() conversion", uint32(s))
	}
	return json.Marshal(s.String())
}

// IsFinished reports whether no further transitions are expected.
func (s TaskState) IsFinished() bool {
	return s == TaskStateSuccess || s == TaskStateFailed || s == TaskStateUpstreamFailed
}

// TaskWatcher captures the state, timings and row counts of one task.
type TaskWatcher struct {
	taskName  string
	mu        sync.RWMutex
	state     TaskState
	startTime time.Time
	endTime   time.Time
	err       string
	rows      int64
}

type Stats struct {
	TaskName       string    `json:"taskName"`
	StatusText     string    `json:"statusText"`
	StatusEmoji    string    `json:"statusEmoji"`
	StartTime      time.Time `json:"startTime,omitempty"`
	EndTime        time.Time `json:"endTime,omitempty"`
	ElapsedTimeSec int       `json:"elapsedTimeSec"`
	RowsAffected   int64     `json:"rowsAffected"`
	Error          string    `json:"error,omitempty"`
}

func NewTaskWatcher(taskName string) *TaskWatcher {
	return &TaskWatcher{taskName: taskName, state: TaskStateQueued}
}

func (w *TaskWatcher) Start() {
	w.mu.Lock()
	w.state = TaskStateRunning
	w.startTime = time.Now()
	w.mu.Unlock()
}

// Finish records the outcome of the task. A nil err means success.
func (w *TaskWatcher) Finish(err error) {
	w.mu.Lock()
	w.endTime = time.Now()
	if err != nil {
		w.state = TaskStateFailed
		w.err = err.Error()
	} else {
		w.state = TaskStateSuccess
	}
	w.mu.Unlock()
}

// Skip marks the task as not run because an upstream task failed.
func (w *TaskWatcher) Skip() {
	w.mu.Lock()
	w.state = TaskStateUpstreamFailed
	w.mu.Unlock()
}

func (w *TaskWatcher) AddRows(n int64) {
	atomic.AddInt64(&w.rows, n)
}

func (w *TaskWatcher) State() TaskState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (w *TaskWatcher) RenderStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var emoji string
	switch w.state {
	case TaskStateRunning:
		emoji = "\U0000231B" // hour glass
	case TaskStateSuccess:
		emoji = "\U00002705" // green tick
	case TaskStateFailed, TaskStateUpstreamFailed:
		emoji = "\U0000274C" // cross
	}
	var elapsed time.Duration
	switch {
	case w.startTime.IsZero():
	case w.endTime.IsZero():
		elapsed = time.Since(w.startTime)
	default:
		elapsed = w.endTime.Sub(w.startTime)
	}
	return Stats{
		TaskName:       w.taskName,
		StatusText:     w.state.String(),
		StatusEmoji:    emoji,
		StartTime:      w.startTime,
		EndTime:        w.endTime,
		ElapsedTimeSec: int(elapsed.Seconds()),
		RowsAffected:   atomic.LoadInt64(&w.rows),
		Error:          w.err,
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	str := fmt.Sprintf("Stats for %v %v %v elapsedTimeSec=%v rowsAffected=%v",
		s.TaskName, s.StatusText, s.StatusEmoji, s.ElapsedTimeSec, s.RowsAffected)
	if s.Error != "" {
		str += " error=" + s.Error
	}
	return str
}
