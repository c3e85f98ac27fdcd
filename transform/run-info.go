package transform

import (
	"sort"
	"sync"
	"time"

	"github.com/relloyd/sparkpipe/stats"
)

type RunInfo struct {
	RunID       string             `json:"runId"`
	DagID       string             `json:"dagId"`
	LogicalDate time.Time          `json:"logicalDate"`
	Closer      *RunCloser         `json:"-"`
	Status      RunStatus          `json:"runStatus"`
	Stats       stats.StatsFetcher `json:"-"`
}

// SafeMapRunInfo wraps a map of run id to RunInfo with locking.
type SafeMapRunInfo struct {
	sync.RWMutex
	Internal map[string]RunInfo
}

func NewSafeMapRunInfo() *SafeMapRunInfo {
	return &SafeMapRunInfo{Internal: make(map[string]RunInfo)}
}

func (t *SafeMapRunInfo) Load(key string) (ri RunInfo, ok bool) {
	t.RLock()
	ri, ok = t.Internal[key]
	t.RUnlock()
	return
}

func (t *SafeMapRunInfo) Store(key string, value RunInfo) {
	t.Lock()
	t.Internal[key] = value
	t.Unlock()
}

func (t *SafeMapRunInfo) Delete(key string) {
	t.Lock()
	delete(t.Internal, key)
	t.Unlock()
}

// List returns every run, oldest first.
func (t *SafeMapRunInfo) List() []RunInfo {
	t.RLock()
	out := make([]RunInfo, 0, len(t.Internal))
	for _, v := range t.Internal {
		out = append(out, v)
	}
	t.RUnlock()
	sort.Slice(out, func(i, j int) bool { // xid values sort by creation time.
		return out[i].RunID < out[j].RunID
	})
	return out
}

// ConsumeRunStatusChanges loops until chanStatus is closed
// and updates t.Internal[runID] with any statuses received.
func (t *SafeMapRunInfo) ConsumeRunStatusChanges(runID string, chanStatus chan RunStatus) {
	for status := range chanStatus {
		ri, _ := t.Load(runID)
		switch status.Status {
		case StatusRunning:
			ri.Status.Status = status.Status
			ri.Status.StartTime = time.Now()
		case StatusSuccess, StatusShutdown:
			ri.Status.Status = status.Status
			ri.Status.EndTime = time.Now()
		case StatusFailed:
			ri.Status.Status = status.Status
			ri.Status.EndTime = time.Now()
			ri.Status.Error = status.Error
		}
		t.Store(runID, ri)
	}
}
