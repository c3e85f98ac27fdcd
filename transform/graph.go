package transform

import (
	"fmt"
	"sort"

	"github.com/relloyd/sparkpipe/components"
)

// Graph is a directed acyclic graph of named tasks.
type Graph struct {
	DagID      string
	tasks      map[string]components.Task
	taskTypes  map[string]string
	upstream   map[string]map[string]struct{}
	downstream map[string]map[string]struct{}
	edges      []Edge
}

func NewGraph(dagID string) *Graph {
	return &Graph{
		DagID:      dagID,
		tasks:      make(map[string]components.Task),
		taskTypes:  make(map[string]string),
		upstream:   make(map[string]map[string]struct{}),
		downstream: make(map[string]map[string]struct{}),
	}
}

// AddTask adds a named task. Names are unique within a graph.
func (g *Graph) AddTask(name string, taskType string, t components.Task) error {
	if name == "" {
		return fmt.Errorf("task name is empty")
	}
	if t == nil {
		return fmt.Errorf("task %q is nil", name)
	}
	if _, exists := g.tasks[name]; exists {
		return fmt.Errorf("duplicate task %q", name)
	}
	g.tasks[name] = t
	g.taskTypes[name] = taskType
	g.upstream[name] = make(map[string]struct{})
	g.downstream[name] = make(map[string]struct{})
	return nil
}

// AddEdge records that to depends on from.
func (g *Graph) AddEdge(from string, to string) error {
	if _, ok := g.tasks[from]; !ok {
		return fmt.Errorf("edge %v -> %v: unknown task %q", from, to, from)
	}
	if _, ok := g.tasks[to]; !ok {
		return fmt.Errorf("edge %v -> %v: unknown task %q", from, to, to)
	}
	if from == to {
		return fmt.Errorf("task %q cannot depend on itself", from)
	}
	if _, dup := g.downstream[from][to]; dup {
		return fmt.Errorf("duplicate edge %v -> %v", from, to)
	}
	g.downstream[from][to] = struct{}{}
	g.upstream[to][from] = struct{}{}
	g.edges = append(g.edges, Edge{From: from, To: to})
	return nil
}

// Validate returns an error if the graph is empty or contains a cycle.
func (g *Graph) Validate() error {
	if len(g.tasks) == 0 {
		return fmt.Errorf("graph %q has no tasks", g.DagID)
	}
	_, err := g.TopologicalOrder()
	return err
}

// TopologicalOrder returns every task name such that each task follows all of its upstream tasks.
// Ties are broken by name so the order is stable.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.tasks))
	for name := range g.tasks {
		inDegree[name] = len(g.upstream[name])
	}
	ready := make([]string, 0)
	for name, n := range inDegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	order := make([]string, 0, len(g.tasks))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		next := make([]string, 0)
		for d := range g.downstream[name] {
			inDegree[d]--
			if inDegree[d] == 0 {
				next = append(next, d)
			}
		}
		ready = append(ready, next...)
		sort.Strings(ready)
	}
	if len(order) != len(g.tasks) {
		cyclic := make([]string, 0)
		for name, n := range inDegree {
			if n > 0 {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
		return nil, fmt.Errorf("graph %q contains a cycle involving tasks %v", g.DagID, cyclic)
	}
	return order, nil
}

// Upstream returns the sorted names of the tasks name depends on directly.
func (g *Graph) Upstream(name string) []string {
	return sortedKeys(g.upstream[name])
}

// Downstream returns the sorted names of the tasks that depend directly on name.
func (g *Graph) Downstream(name string) []string {
	return sortedKeys(g.downstream[name])
}

// Task returns the task called name.
func (g *Graph) Task(name string) (components.Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskType returns the registered type name of task name.
func (g *Graph) TaskType(name string) string {
	return g.taskTypes[name]
}

// Tasks returns the sorted task names.
func (g *Graph) Tasks() []string {
	names := make([]string, 0, len(g.tasks))
	for n := range g.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Edges returns the edges in the order they were added.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
