package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/relloyd/sparkpipe/logger"
)

func TestMockWarehouse_CreateFromDdl(t *testing.T) {
	m := NewMockWarehouse()
	ddl := `CREATE TABLE IF NOT EXISTS public.songs (
		songid varchar(256) NOT NULL,
		title varchar(256),
		"year" int4,
		duration numeric(18,0),
		CONSTRAINT songs_pkey PRIMARY KEY (songid)
	);`
	if _, err := m.Exec(ddl); err != nil {
		t.Fatal(err)
	}
	// A second run is a no-op.
	if _, err := m.Exec(ddl); err != nil {
		t.Fatal(err)
	}
	if err := m.InsertRows("songs", []interface{}{"s1", "t", int64(2019), 1.5}); err != nil {
		t.Fatal(err)
	}
	if err := m.InsertRows("songs", []interface{}{"too short"}); err == nil {
		t.Fatal("expected error inserting a row with the wrong number of columns")
	}
	if n := m.RowCount("public.songs"); n != 1 {
		t.Fatalf("Expected: 1; Got: %v", n)
	}
}

func TestMockWarehouse_DeleteUsing(t *testing.T) {
	m := NewMockWarehouse()
	m.CreateTable("artists", "artistid", "name")
	_ = m.InsertRows("artists", []interface{}{"a1", "old"}, []interface{}{"a2", "kept"})
	steps := []string{
		"DROP TABLE IF EXISTS stage_artists",
		"CREATE TEMP TABLE stage_artists (LIKE artists)",
		"INSERT INTO stage_artists SELECT * FROM artists",
		"DELETE FROM artists USING stage_artists WHERE artists.artistid = stage_artists.artistid",
	}
	for _, s := range steps {
		if _, err := m.Exec(s); err != nil {
			t.Fatalf("statement %q: %v", s, err)
		}
	}
	if n := m.RowCount("artists"); n != 0 {
		t.Fatalf("Expected: 0; Got: %v", n)
	}
	if n := m.RowCount("stage_artists"); n != 2 {
		t.Fatalf("Expected: 2; Got: %v", n)
	}
}

func TestMockWarehouse_CopyAndCount(t *testing.T) {
	m := NewMockWarehouse()
	m.CreateTable("staging_songs", "song_id", "title")
	m.PutObjects("s3://udacity-dend/song_data/A/a.json", []interface{}{"s1", "one"})
	m.PutObjects("s3://udacity-dend/song_data/B/b.json", []interface{}{nil, "two"})
	m.PutObjects("s3://udacity-dend/log_data/x.json", []interface{}{"ignored", "x"})
	res, err := m.Exec("COPY staging_songs FROM 's3://udacity-dend/song_data' ACCESS_KEY_ID 'a' SECRET_ACCESS_KEY 'b' REGION AS 'us-west-2' FORMAT AS JSON 'auto'")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := res.RowsAffected(); n != 2 {
		t.Fatalf("Expected: 2 rows copied; Got: %v", n)
	}
	rows, err := m.QueryContext(context.Background(), "SELECT COUNT(*) FROM staging_songs WHERE song_id IS NULL;")
	if err != nil {
		t.Fatal(err)
	}
	if !rows.Next() {
		t.Fatal("expected a row")
	}
	var v interface{}
	if err := rows.Scan(&v); err != nil {
		t.Fatal(err)
	}
	if v != int64(1) {
		t.Fatalf("Expected: 1; Got: %v", v)
	}
}

func TestMockWarehouse_RegisteredQueryAndFailures(t *testing.T) {
	m := NewMockWarehouse()
	m.CreateTable("users", "userid", "level")
	m.RegisterQuery("SELECT distinct userid, level\n FROM staging_events", []string{"userid", "level"},
		[]interface{}{int64(1), "free"}, []interface{}{int64(2), "paid"})
	if _, err := m.Exec("INSERT INTO users SELECT distinct userid, level FROM staging_events"); err != nil {
		t.Fatal(err)
	}
	if n := m.RowCount("users"); n != 2 {
		t.Fatalf("Expected: 2; Got: %v", n)
	}
	boom := errors.New("boom")
	m.FailOn("(?i)^truncate", boom)
	if _, err := m.Exec("TRUNCATE TABLE users"); err != boom {
		t.Fatalf("Expected: %v; Got: %v", boom, err)
	}
	if _, err := m.Exec("VACUUM users"); err == nil {
		t.Fatal("expected error for unsupported statement")
	}
	if got := len(m.Statements()); got != 3 {
		t.Fatalf("Expected: 3 statements recorded; Got: %v", got)
	}
}

type warnRecorder struct {
	logger.NullLogger
	warnings []string
}

func (w *warnRecorder) Warn(m ...interface{}) {
	w.warnings = append(w.warnings, fmt.Sprint(m...))
}

func TestMockWarehouse_UnrecognisedSelectIsReported(t *testing.T) {
	m := NewMockWarehouse()
	log := &warnRecorder{}
	m.SetLogger(log)
	m.CreateTable("users", "userid", "level")
	if _, err := m.Exec("INSERT INTO users SELECT distinct userid, level FROM staging_events"); err != nil {
		t.Fatal(err)
	}
	if n := m.RowCount("users"); n != 0 {
		t.Fatalf("Expected: 0; Got: %v", n)
	}
	if got := m.UnmatchedQueries(); len(got) != 1 {
		t.Fatalf("Expected: 1 unmatched query; Got: %q", got)
	}
	if len(log.warnings) != 1 {
		t.Fatalf("Expected: 1 warning; Got: %q", log.warnings)
	}
	// Recognised queries are not reported.
	if _, err := m.QueryContext(context.Background(), "SELECT COUNT(*) FROM users"); err != nil {
		t.Fatal(err)
	}
	if len(m.UnmatchedQueries()) != 1 {
		t.Fatalf("Expected: recognised query not to be reported; Got: %q", m.UnmatchedQueries())
	}
}
