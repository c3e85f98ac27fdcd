package stats

import (
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// RunStatsManager saves stats for each task added via AddTaskWatcher and dumps them periodically.
// Tasks are reported in the order they were added.
type RunStatsManager struct {
	ticker          *time.Ticker
	tickerDone      chan struct{}
	tickerIsRunning bool
	tickerFrequency time.Duration
	mu              sync.Mutex
	log             logger.Logger
	mapTaskStats    *ordered_map.OrderedMap // map of task name to *TaskWatcher.
}

// SetStatsDumpFrequency returns an option for NewRunStats. Zero disables periodic dumping.
func SetStatsDumpFrequency(d time.Duration) func(t *RunStatsManager) {
	return func(t *RunStatsManager) {
		t.tickerFrequency = d
	}
}

func NewRunStats(log logger.Logger, options ...func(t *RunStatsManager)) *RunStatsManager {
	t := &RunStatsManager{
		log:             log,
		tickerFrequency: time.Second * constants.StatsCaptureFrequencySeconds,
		mapTaskStats:    ordered_map.NewOrderedMap(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// AddTaskWatcher creates a TaskWatcher for taskName, or returns the existing one.
func (t *RunStatsManager) AddTaskWatcher(taskName string) *TaskWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.mapTaskStats.Get(taskName); ok {
		return v.(*TaskWatcher)
	}
	w := NewTaskWatcher(taskName)
	t.mapTaskStats.Set(taskName, w)
	return w
}

// GetTaskWatcher returns the watcher for taskName if one was added.
func (t *RunStatsManager) GetTaskWatcher(taskName string) (*TaskWatcher, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.mapTaskStats.Get(taskName)
	if !ok {
		return nil, false
	}
	return v.(*TaskWatcher), true
}

// RecordRows adds to the rows affected by taskName.
func (t *RunStatsManager) RecordRows(taskName string, rows int64) {
	t.AddTaskWatcher(taskName).AddRows(rows)
}

func (t *RunStatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tickerIsRunning {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(t.tickerFrequency)
	t.tickerDone = make(chan struct{})
	t.tickerIsRunning = true
	go func(ticker *time.Ticker, done <-chan struct{}) {
		t.log.Debug("stats dumper ticker started")
		for {
			select {
			case <-done:
				t.log.Debug("stats dumper ticker stopped")
				return
			case <-ticker.C:
				t.logStats()
			}
		}
	}(t.ticker, t.tickerDone)
}

// StopDumping stops the ticker and logs the final stats.
// The dumper goroutine may be inside logStats, so mu must not be held while signalling it.
func (t *RunStatsManager) StopDumping() {
	t.mu.Lock()
	var done chan struct{}
	if t.tickerIsRunning {
		t.tickerIsRunning = false
		t.ticker.Stop()
		done = t.tickerDone
	}
	t.mu.Unlock()
	if done != nil {
		close(done)
	}
	t.logStats()
}

func (t *RunStatsManager) logStats() {
	for _, s := range t.GetStats() {
		t.log.Info(s.String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *RunStatsManager) GetStats() []Stats {
	t.mu.Lock()
	watchers := make([]*TaskWatcher, 0, t.mapTaskStats.Len())
	iter := t.mapTaskStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		watchers = append(watchers, kv.Value.(*TaskWatcher))
	}
	t.mu.Unlock()
	statsList := make([]Stats, 0, len(watchers))
	for _, w := range watchers {
		statsList = append(statsList, w.RenderStats())
	}
	return statsList
}
