package transform

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/stats"
	"golang.org/x/net/context"
)

// testTask records when it ran and returns err.
type testTask struct {
	name   string
	err    error
	panic  bool
	delay  time.Duration
	rows   int64
	events *eventLog
}

type eventLog struct {
	mu      sync.Mutex
	events  []string
	active  int32
	maxSeen int32
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) index(e string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, v := range l.events {
		if v == e {
			return i
		}
	}
	return -1
}

func (t *testTask) Execute(ctx context.Context, rc *components.RunContext) error {
	n := atomic.AddInt32(&t.events.active, 1)
	for {
		m := atomic.LoadInt32(&t.events.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&t.events.maxSeen, m, n) {
			break
		}
	}
	defer atomic.AddInt32(&t.events.active, -1)
	t.events.add("start " + t.name)
	defer t.events.add("end " + t.name)
	time.Sleep(t.delay)
	if t.rows > 0 && rc.Rows != nil {
		rc.Rows.RecordRows(t.name, t.rows)
	}
	if t.panic {
		panic("kaboom")
	}
	return t.err
}

func newTestGraph(t *testing.T, events *eventLog, tasks map[string]*testTask, edges ...[2]string) *Graph {
	g := NewGraph("test")
	for name, task := range tasks {
		task.name = name
		task.events = events
		if err := g.AddTask(name, "test", task); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func testRunContext() *components.RunContext {
	return components.NewRunContext(time.Date(2019, 1, 12, 0, 0, 0, 0, time.UTC), nil)
}

func TestLaunch_RespectsEdges(t *testing.T) {
	events := &eventLog{}
	g := newTestGraph(t, events, map[string]*testTask{
		"begin": {}, "stage_a": {delay: 20 * time.Millisecond}, "stage_b": {delay: 10 * time.Millisecond},
		"fact": {}, "dim_1": {}, "dim_2": {}, "check": {}, "end": {},
	},
		[2]string{"begin", "stage_a"}, [2]string{"begin", "stage_b"},
		[2]string{"stage_a", "fact"}, [2]string{"stage_b", "fact"},
		[2]string{"fact", "dim_1"}, [2]string{"fact", "dim_2"},
		[2]string{"dim_1", "check"}, [2]string{"dim_2", "check"},
		[2]string{"check", "end"},
	)
	s := stats.NewRunStats(logger.NullLogger{}, stats.SetStatsDumpFrequency(0))
	if err := Launch(context.Background(), logger.NullLogger{}, g, testRunContext(), LaunchOptions{Stats: s}); err != nil {
		t.Fatal(err)
	}
	for _, e := range g.Edges() {
		if events.index("end "+e.From) > events.index("start "+e.To) {
			t.Fatalf("task %v started before upstream %v finished: %v", e.To, e.From, events.events)
		}
	}
	if events.maxSeen < 2 {
		t.Fatalf("Expected: independent tasks to overlap; Got: max %v concurrent", events.maxSeen)
	}
	for _, st := range s.GetStats() {
		if st.StatusText != "success" {
			t.Fatalf("Expected: success for %v; Got: %v", st.TaskName, st.StatusText)
		}
	}
}

func TestLaunch_FailureSkipsDownstreamOnly(t *testing.T) {
	boom := errors.New("boom")
	events := &eventLog{}
	g := newTestGraph(t, events, map[string]*testTask{
		"begin": {}, "bad": {err: boom}, "after_bad": {}, "last": {}, "good": {}, "after_good": {},
	},
		[2]string{"begin", "bad"}, [2]string{"bad", "after_bad"}, [2]string{"after_bad", "last"},
		[2]string{"begin", "good"}, [2]string{"good", "after_good"},
	)
	s := stats.NewRunStats(logger.NullLogger{}, stats.SetStatsDumpFrequency(0))
	err := Launch(context.Background(), logger.NullLogger{}, g, testRunContext(), LaunchOptions{Stats: s})
	if err != boom {
		t.Fatalf("Expected: %v; Got: %v", boom, err)
	}
	expected := map[string]stats.TaskState{
		"begin":      stats.TaskStateSuccess,
		"bad":        stats.TaskStateFailed,
		"after_bad":  stats.TaskStateUpstreamFailed,
		"last":       stats.TaskStateUpstreamFailed,
		"good":       stats.TaskStateSuccess,
		"after_good": stats.TaskStateSuccess,
	}
	for name, state := range expected {
		w, _ := s.GetTaskWatcher(name)
		if w.State() != state {
			t.Fatalf("Expected: %v for %v; Got: %v", state, name, w.State())
		}
	}
	if events.index("start after_bad") >= 0 {
		t.Fatal("downstream of a failed task was executed")
	}
}

func TestLaunch_MaxActiveTasks(t *testing.T) {
	events := &eventLog{}
	tasks := map[string]*testTask{}
	for _, n := range []string{"a", "b", "c", "d"} {
		tasks[n] = &testTask{delay: 5 * time.Millisecond}
	}
	g := newTestGraph(t, events, tasks)
	if err := Launch(context.Background(), logger.NullLogger{}, g, testRunContext(), LaunchOptions{MaxActiveTasks: 1}); err != nil {
		t.Fatal(err)
	}
	if events.maxSeen != 1 {
		t.Fatalf("Expected: 1 concurrent task; Got: %v", events.maxSeen)
	}
}

func TestLaunch_PanicBecomesError(t *testing.T) {
	g := newTestGraph(t, &eventLog{}, map[string]*testTask{"a": {panic: true}})
	err := Launch(context.Background(), logger.NullLogger{}, g, testRunContext(), LaunchOptions{})
	if err == nil {
		t.Fatal("expected error from panicking task")
	}
}

func TestLaunch_CancelledContext(t *testing.T) {
	events := &eventLog{}
	g := newTestGraph(t, events, map[string]*testTask{"a": {}, "b": {}}, [2]string{"a", "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Launch(ctx, logger.NullLogger{}, g, testRunContext(), LaunchOptions{}); err != context.Canceled {
		t.Fatalf("Expected: %v; Got: %v", context.Canceled, err)
	}
	if len(events.events) != 0 {
		t.Fatalf("Expected: no tasks to run; Got: %v", events.events)
	}
}

func TestLaunch_RowsGoToEachRunsStats(t *testing.T) {
	rc := testRunContext()
	for i := 0; i < 2; i++ {
		events := &eventLog{}
		g := newTestGraph(t, events, map[string]*testTask{"load": {rows: 7}})
		s := stats.NewRunStats(logger.NullLogger{}, stats.SetStatsDumpFrequency(0))
		if err := Launch(context.Background(), logger.NullLogger{}, g, rc, LaunchOptions{Stats: s}); err != nil {
			t.Fatal(err)
		}
		got := s.GetStats()
		if len(got) != 1 || got[0].RowsAffected != 7 {
			t.Fatalf("run %v: Expected: 7 rows recorded; Got: %+v", i, got)
		}
	}
	if rc.Rows != nil {
		t.Fatal("Expected: caller's run context to be left unchanged")
	}
}
