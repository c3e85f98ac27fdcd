package rdbms

import (
	"strings"
	"testing"

	"github.com/relloyd/sparkpipe/constants"
)

func testCopySpec() CopyJsonSpec {
	return CopyJsonSpec{
		Table:           MustNewSchemaTable("staging_events"),
		SourcePath:      "s3://udacity-dend/log_data",
		AccessKeyId:     "AKIAEXAMPLE",
		SecretAccessKey: "se'cret",
		Region:          "us-west-2",
		JsonOption:      "s3://udacity-dend/log_json_path.json",
	}
}

func TestGetDialect(t *testing.T) {
	for _, c := range []string{
		constants.ConnectionTypeRedshift,
		constants.ConnectionTypePostgres,
		constants.ConnectionTypeSnowflake,
		constants.ConnectionTypeSqlServer,
		constants.ConnectionTypeNetezza,
		constants.ConnectionTypeMock,
	} {
		if _, err := GetDialect(c); err != nil {
			t.Fatalf("expected dialect for %q; got %v", c, err)
		}
	}
	if _, err := GetDialect("oracle"); err == nil {
		t.Fatal("expected error for unsupported dialect")
	}
}

func TestRedshiftCopyJson(t *testing.T) {
	d, _ := GetDialect(constants.ConnectionTypeRedshift)
	got, err := d.CopyJson(testCopySpec())
	if err != nil {
		t.Fatal(err)
	}
	expected := "COPY staging_events\n" +
		"FROM 's3://udacity-dend/log_data'\n" +
		"ACCESS_KEY_ID 'AKIAEXAMPLE'\n" +
		"SECRET_ACCESS_KEY 'se''cret'\n" +
		"REGION AS 'us-west-2'\n" +
		"FORMAT AS JSON 's3://udacity-dend/log_json_path.json'"
	if got != expected {
		t.Fatalf("Expected:\n%v\nGot:\n%v", expected, got)
	}
	// Automatic mapping with a session token.
	spec := testCopySpec()
	spec.JsonOption = ""
	spec.SessionToken = "tok"
	got, err = d.CopyJson(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "SESSION_TOKEN 'tok'") || !strings.HasSuffix(got, "FORMAT AS JSON 'auto'") {
		t.Fatalf("unexpected copy statement: %v", got)
	}
	if r := spec.Redact(got); strings.Contains(r, "se''cret") || strings.Contains(r, "'tok'") {
		t.Fatalf("expected redacted credentials; got %v", r)
	}
}

func TestCopyJsonErrors(t *testing.T) {
	d, _ := GetDialect(constants.ConnectionTypeRedshift)
	spec := testCopySpec()
	spec.SourcePath = "gs://bucket/key"
	if _, err := d.CopyJson(spec); err == nil {
		t.Fatal("expected error for non-s3 source")
	}
	spec = testCopySpec()
	spec.SecretAccessKey = ""
	if _, err := d.CopyJson(spec); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, c := range []string{constants.ConnectionTypePostgres, constants.ConnectionTypeSqlServer, constants.ConnectionTypeNetezza} {
		d, _ := GetDialect(c)
		_, err := d.CopyJson(testCopySpec())
		if _, ok := err.(ErrCopyUnsupported); !ok {
			t.Fatalf("expected ErrCopyUnsupported for %v; got %v", c, err)
		}
	}
	sf, _ := GetDialect(constants.ConnectionTypeSnowflake)
	if _, err := sf.CopyJson(testCopySpec()); err == nil {
		t.Fatal("expected snowflake to reject a JSONPaths mapping file")
	}
	spec = testCopySpec()
	spec.JsonOption = "auto"
	got, err := sf.CopyJson(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "copy into staging_events\nfrom 's3://udacity-dend/log_data'") {
		t.Fatalf("unexpected snowflake copy: %v", got)
	}
}

func TestUpsertStatements(t *testing.T) {
	sel := "SELECT distinct artist_id, artist_name FROM staging_songs;\n"
	d, _ := GetDialect(constants.ConnectionTypeRedshift)
	got, err := d.UpsertStatements(MustNewSchemaTable("artists"), sel, "artistid")
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"DROP TABLE IF EXISTS stage_artists",
		"CREATE TEMP TABLE stage_artists (LIKE artists)",
		"INSERT INTO stage_artists SELECT distinct artist_id, artist_name FROM staging_songs",
		"DELETE FROM artists USING stage_artists WHERE artists.artistid = stage_artists.artistid",
		"INSERT INTO artists SELECT * FROM stage_artists",
		"DROP TABLE IF EXISTS stage_artists",
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected: %v statements; Got: %v", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected: %q; Got: %q", expected[i], got[i])
		}
	}
	// Every dialect emits well formed statements with a deterministic temp name.
	for _, c := range []string{constants.ConnectionTypeSnowflake, constants.ConnectionTypeSqlServer, constants.ConnectionTypeNetezza, constants.ConnectionTypePostgres} {
		d, _ := GetDialect(c)
		a, err := d.UpsertStatements(MustNewSchemaTable("public.artists"), sel, "artistid")
		if err != nil {
			t.Fatalf("%v: %v", c, err)
		}
		b, _ := d.UpsertStatements(MustNewSchemaTable("public.artists"), sel, "artistid")
		for i := range a {
			if err := ValidateStatement(a[i]); err != nil {
				t.Fatalf("%v: %v", c, err)
			}
			if a[i] != b[i] {
				t.Fatalf("%v: expected deterministic statements; got %q and %q", c, a[i], b[i])
			}
		}
		if !strings.Contains(strings.Join(a, "\n"), "stage_artists") {
			t.Fatalf("%v: expected temp table stage_artists in %v", c, a)
		}
	}
	if _, err := d.UpsertStatements(MustNewSchemaTable("artists"), sel, "artistid; drop table users"); err == nil {
		t.Fatal("expected error for bad primary key")
	}
	if _, err := d.UpsertStatements(MustNewSchemaTable("artists"), " ; ", "artistid"); err == nil {
		t.Fatal("expected error for empty select")
	}
}

func TestReplaceStatements(t *testing.T) {
	d, _ := GetDialect(constants.ConnectionTypeRedshift)
	tbl := MustNewSchemaTable("users")
	s, _ := d.Truncate(tbl)
	if s != "TRUNCATE TABLE users" {
		t.Fatalf("unexpected truncate: %v", s)
	}
	s, _ = d.DeleteAll(tbl)
	if s != "DELETE FROM users" {
		t.Fatalf("unexpected delete: %v", s)
	}
	s, _ = d.InsertSelect(tbl, "SELECT 1;")
	if s != "INSERT INTO users SELECT 1" {
		t.Fatalf("unexpected insert: %v", s)
	}
	if _, err := d.InsertSelect(tbl, "SELECT (1"); err == nil {
		t.Fatal("expected malformed select to be rejected")
	}
}
