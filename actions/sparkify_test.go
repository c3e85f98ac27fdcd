package actions

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/relloyd/sparkpipe/sqlqueries"
	"github.com/relloyd/sparkpipe/transform"
)

func TestGetSparkifyPipeline(t *testing.T) {
	p, err := GetSparkifyPipeline(NewSparkifyConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tasks) != 11 {
		t.Fatalf("Expected: 11 tasks; Got: %v", len(p.Tasks))
	}
	if len(p.Edges) != 14 {
		t.Fatalf("Expected: 14 edges; Got: %v", len(p.Edges))
	}
	if p.Schedule != "0 * * * *" || p.DefaultArgs.Owner != "udacity" || p.DefaultArgs.Retries != 3 {
		t.Fatalf("unexpected schedule or default args: %v %+v", p.Schedule, p.DefaultArgs)
	}
	if d, _ := p.DefaultArgs.GetRetryDelay(); d != 5*time.Minute {
		t.Fatalf("Expected: 5m retry delay; Got: %v", d)
	}
	artist := p.Tasks["Load_artist_dim_table"]
	if artist.Data[transform.DataKeyPrimaryKey] != "artistid" || artist.Data[transform.DataKeyAppendInsert] != "true" {
		t.Fatalf("Expected artist dimension to upsert on artistid; Got: %v", artist.Data)
	}
	if p.Tasks["stage_events"].Data[transform.DataKeyJsonOption] != "s3://udacity-dend/log_json_path.json" {
		t.Fatalf("unexpected stage_events data: %v", p.Tasks["stage_events"].Data)
	}
	g, err := transform.PlanGraph(p)
	if err != nil {
		t.Fatal(err)
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	if order[0] != "Begin_execution" || order[1] != "create_postgres_tables" || order[len(order)-1] != "Stop_execution" {
		t.Fatalf("unexpected order: %v", order)
	}
	if up := g.Upstream("Run_data_quality_checks"); len(up) != 4 {
		t.Fatalf("Expected: 4 dimension loads upstream of the data quality check; Got: %v", up)
	}
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	if len(pos) != len(p.Tasks) {
		t.Fatalf("Expected: every task once in the order; Got: %v", order)
	}
	for _, e := range p.Edges {
		if pos[e.From] >= pos[e.To] {
			t.Fatalf("task %v is ordered before its upstream %v: %v", e.To, e.From, order)
		}
	}
	before := func(a, b string) {
		if pos[a] >= pos[b] {
			t.Fatalf("Expected: %v before %v; Got: %v", a, b, order)
		}
	}
	for _, stage := range []string{"stage_events", "Stage_songs"} {
		before("create_postgres_tables", stage)
		before(stage, "Load_songplays_fact_table")
	}
	for _, dim := range []string{"Load_user_dim_table", "Load_song_dim_table", "Load_artist_dim_table", "Load_time_dim_table"} {
		before("Load_songplays_fact_table", dim)
		before(dim, "Run_data_quality_checks")
	}
}

func TestGetSparkifyPipeline_BadConfig(t *testing.T) {
	if _, err := GetSparkifyPipeline(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg := NewSparkifyConfig()
	cfg.S3Bucket = ""
	if _, err := GetSparkifyPipeline(cfg); err == nil || !strings.Contains(err.Error(), "s3 bucket") {
		t.Fatalf("Expected: error naming the s3 bucket; Got: %v", err)
	}
	cfg = NewSparkifyConfig()
	cfg.Schedule = "every hour"
	if _, err := GetSparkifyPipeline(cfg); err == nil {
		t.Fatal("expected error for a bad schedule")
	}
	cfg = NewSparkifyConfig()
	cfg.DagID = `quote"d`
	p, err := GetSparkifyPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.DagID != `quote"d` {
		t.Fatalf("Expected: escaped dag id to survive; Got: %v", p.DagID)
	}
}

// newSparkifyWarehouse returns a mock warehouse holding S3 objects for both staging tables
// and canned results for the songs, artists and songplays selects.
func newSparkifyWarehouse(t *testing.T, songID interface{}) *shared.MockWarehouse {
	m := shared.NewMockWarehouse()
	event := make([]interface{}, 18)
	m.PutObjects("s3://udacity-dend/log_data/2018/11/2018-11-01-events.json", event, event)
	song := make([]interface{}, 10)
	m.PutObjects("s3://udacity-dend/song_data/A/A/A/TRAAAAK128F9318786.json", song)
	r := sqlqueries.NewRegistry()
	get := func(name string) string {
		q, err := r.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		return q
	}
	m.RegisterQuery(get(sqlqueries.SongTableInsert), []string{"song_id", "title", "artist_id", "year", "duration"},
		[]interface{}{songID, "Setanta matins", "ARJIE2Y1187B994AB7", int64(2008), 269.58})
	m.RegisterQuery(get(sqlqueries.ArtistTableInsert), []string{"artist_id", "artist_name", "artist_location", "artist_latitude", "artist_longitude"},
		[]interface{}{"ARJIE2Y1187B994AB7", "Line Renaud", "", nil, nil},
		[]interface{}{"AR73AIO1187B9AD57B", "Western Addiction", "San Francisco", 37.77, -122.42})
	m.RegisterQuery(get(sqlqueries.SongplayTableInsert), []string{"songplay_id", "start_time", "userid", "level", "song_id", "artist_id", "sessionid", "location", "user_agent"},
		[]interface{}{"a1", time.Date(2018, 11, 1, 21, 1, 46, 0, time.UTC), int64(8), "free", nil, nil, int64(139), "Phoenix", "Mozilla"})
	return m
}

func newSparkifyRunConfig(m *shared.MockWarehouse) (*RunConfig, *transform.PipelineDefinition, error) {
	sc := NewSparkifyConfig()
	sc.RedshiftType = constants.ConnectionTypeMock
	p, err := GetSparkifyPipeline(sc)
	if err != nil {
		return nil, nil, err
	}
	p.Connections[sc.AwsConnection] = shared.ConnectionDetails{
		Type:        constants.ConnectionTypeAws,
		LogicalName: sc.AwsConnection,
		Data:        map[string]string{"accessKeyId": "AKIAEXAMPLE", "secretAccessKey": "s3cr3t"},
	}
	cfg := &RunConfig{
		LogicalDate:       "2019-01-12T10:00:00Z",
		runManagerOptions: []transform.RunManagerOption{transform.WithConnector(sc.RedshiftConnection, m)},
	}
	return cfg, p, nil
}

func TestSparkifyPipeline_RunsTwiceOnMockWarehouse(t *testing.T) {
	m := newSparkifyWarehouse(t, "SOSXLTC12AF72A7F54")
	cfg, p, err := newSparkifyRunConfig(m)
	if err != nil {
		t.Fatal(err)
	}
	for run := 1; run <= 2; run++ {
		if _, err := launchPipeline(testLogger(), p, cfg); err != nil {
			t.Fatalf("run %v: %v", run, err)
		}
		// Staging and dimension tables hold one copy of the source data after every run.
		for table, want := range map[string]int{"staging_events": 2, "staging_songs": 1, "songs": 1, "artists": 2} {
			if n := m.RowCount(table); n != want {
				t.Fatalf("run %v: Expected: %v rows in %v; Got: %v", run, want, table, n)
			}
		}
		// The fact table is append-only.
		if n := m.RowCount("songplays"); n != run {
			t.Fatalf("run %v: Expected: %v rows in songplays; Got: %v", run, run, n)
		}
	}
	if n := m.RowCount("stage_artists"); n != -1 {
		t.Fatalf("Expected: temp table dropped; Got: %v rows", n)
	}
	for _, s := range m.Statements() {
		if strings.Contains(s, "s3cr3t") && !strings.HasPrefix(strings.ToUpper(s), "COPY") {
			t.Fatalf("secret found outside a COPY statement: %v", s)
		}
	}
}

func TestSparkifyPipeline_DataQualityFailure(t *testing.T) {
	m := newSparkifyWarehouse(t, nil) // a song without an id.
	cfg, p, err := newSparkifyRunConfig(m)
	if err != nil {
		t.Fatal(err)
	}
	_, err = launchPipeline(testLogger(), p, cfg)
	var dqErr *components.DataQualityError
	if !errors.As(err, &dqErr) {
		t.Fatalf("Expected: DataQualityError; Got: %v", err)
	}
	if !strings.Contains(err.Error(), "1 does not equal 0") {
		t.Fatalf("Expected: message naming actual and expected values; Got: %v", err)
	}
}

func TestRunDagOrderAndExport(t *testing.T) {
	var b bytes.Buffer
	if err := RunDagOrder(&DagConfig{Out: &b}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 11 {
		t.Fatalf("Expected: 11 lines; Got: %v", b.String())
	}
	if !strings.Contains(lines[0], "Begin_execution (NoOp)") {
		t.Fatalf("unexpected first line: %v", lines[0])
	}
	if !strings.Contains(lines[10], "Stop_execution (NoOp) <- Run_data_quality_checks") {
		t.Fatalf("unexpected last line: %v", lines[10])
	}
	b.Reset()
	if err := RunDagExport(&DagConfig{Format: OutputFormatJson, Out: &b}); err != nil {
		t.Fatal(err)
	}
	p, err := transform.ParsePipelineDefinition(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if p.DagID != "udac_example_dag" || len(p.Tasks) != 11 {
		t.Fatalf("unexpected exported pipeline: %+v", p)
	}
	if err := RunDagExport(&DagConfig{Format: "xml", Out: &b}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
