package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/relloyd/sparkpipe/sqlqueries"
)

const testDefinitionYaml = `
schemaVersion: 1
dagId: test_dag
schedule: "0 * * * *"
defaultArgs:
  owner: udacity
  startDate: "2019-01-12"
  retries: 3
  retryDelay: 5m
connections:
  redshift:
    type: mock
    logicalName: redshift
tasks:
  begin:
    type: NoOp
  create_tables:
    type: SqlExec
    data:
      databaseConnectionName: redshift
      sqlQueryName: create_tables
  check:
    type: DataQuality
    data:
      databaseConnectionName: redshift
      testQuery: SELECT COUNT(*) FROM songs WHERE songid IS NULL
      expectedResult: "0"
edges:
  - from: begin
    to: create_tables
  - from: create_tables
    to: check
`

func TestParsePipelineDefinition(t *testing.T) {
	p, err := ParsePipelineDefinition([]byte(testDefinitionYaml))
	if err != nil {
		t.Fatal(err)
	}
	if p.DagID != "test_dag" || len(p.Tasks) != 3 || len(p.Edges) != 2 {
		t.Fatalf("unexpected definition: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	p.Schedule = "not a schedule"
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for a bad schedule")
	}
}

func TestLaunchPipelineDefinition(t *testing.T) {
	p, err := ParsePipelineDefinition([]byte(testDefinitionYaml))
	if err != nil {
		t.Fatal(err)
	}
	m := shared.NewMockWarehouse()
	ri := NewSafeMapRunInfo()
	runID, err := LaunchPipelineDefinition(logger.NullLogger{}, ri, p, RunOptions{
		BlockUntilComplete: true,
		LogicalDate:        time.Date(2019, 1, 12, 1, 0, 0, 0, time.UTC),
		CleanupHandlerFn:   CleanupHandlerNone,
		ManagerOptions:     []RunManagerOption{WithConnector("redshift", m)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(m.TableNames()); n != 7 {
		t.Fatalf("Expected: 7 tables; Got: %v", m.TableNames())
	}
	// Status updates are consumed asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		info, ok := ri.Load(runID)
		if !ok {
			t.Fatal("run not stored")
		}
		if info.Status.Status == StatusSuccess {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected: success; Got: %v", info.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBuildGraph_Errors(t *testing.T) {
	p, err := ParsePipelineDefinition([]byte(testDefinitionYaml))
	if err != nil {
		t.Fatal(err)
	}
	rm := NewRunManager(logger.NullLogger{}, p, WithConnector("redshift", shared.NewMockWarehouse()))
	p.Tasks["bad"] = TaskDefinition{Type: "Nope"}
	if _, err := BuildGraph(logger.NullLogger{}, p, rm); err == nil || !strings.Contains(err.Error(), "unsupported task type") {
		t.Fatalf("Expected: unsupported task type error; Got: %v", err)
	}
	delete(p.Tasks, "bad")
	p.Tasks["load"] = TaskDefinition{Type: constants.TaskTypeLoadFact, Data: map[string]string{
		DataKeyDatabaseConnectionName: "redshift",
		DataKeyTable:                  "songplays",
		DataKeySqlText:                "SELECT 1",
		DataKeySqlQueryName:           sqlqueries.SongplayTableInsert,
	}}
	if _, err := BuildGraph(logger.NullLogger{}, p, rm); err == nil {
		t.Fatal("expected error when both sqlText and sqlQueryName are set")
	}
	delete(p.Tasks, "load")
	p.Edges = append(p.Edges, Edge{From: "check", To: "begin"})
	if _, err := BuildGraph(logger.NullLogger{}, p, rm); err == nil {
		t.Fatal("expected error for a cycle")
	}
}

func TestLogicalDate(t *testing.T) {
	p := &PipelineDefinition{Schedule: "0 * * * *", DefaultArgs: DefaultArgs{StartDate: "2019-01-12"}}
	got, err := p.LogicalDate(time.Date(2019, 1, 12, 5, 42, 10, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if expected := time.Date(2019, 1, 12, 5, 0, 0, 0, time.UTC); !got.Equal(expected) {
		t.Fatalf("Expected: %v; Got: %v", expected, got)
	}
	p.Schedule = "@daily"
	got, err = p.LogicalDate(time.Date(2019, 2, 1, 5, 42, 10, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if expected := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC); !got.Equal(expected) {
		t.Fatalf("Expected: %v; Got: %v", expected, got)
	}
}

func TestDefaultArgs_Validate(t *testing.T) {
	d := DefaultArgs{Owner: "udacity", StartDate: "2019-01-12", Retries: 3, RetryDelay: "5m"}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if r, _ := d.GetRetryDelay(); r != 5*time.Minute {
		t.Fatalf("Expected: 5m; Got: %v", r)
	}
	d.RetryDelay = "five minutes"
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for a bad retry delay")
	}
	d.RetryDelay = ""
	d.StartDate = "12/01/2019"
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for a bad start date")
	}
}
