package sqlqueries

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{SongplayTableInsert, UserTableInsert, SongTableInsert, ArtistTableInsert, TimeTableInsert} {
		q, err := r.Get(n)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(q, "SELECT") {
			t.Fatalf("expected %v to be a SELECT; got %q", n, q)
		}
	}
	ddl, err := r.Get(CreateTables)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(ddl, "CREATE TABLE IF NOT EXISTS"); n != 7 {
		t.Fatalf("Expected: 7 tables; Got: %v", n)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for unknown name")
	}
}

func TestRegistry_Load(t *testing.T) {
	dir, err := ioutil.TempDir("", "sqlqueries")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f := filepath.Join(dir, "sql.yaml")
	content := "user_table_insert: SELECT 1\ncustom: |\n  SELECT 2\n"
	if err := ioutil.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	if err := r.Load(f); err != nil {
		t.Fatal(err)
	}
	if q, _ := r.Get(UserTableInsert); q != "SELECT 1" {
		t.Fatalf("Expected: SELECT 1; Got: %q", q)
	}
	if q, _ := r.Get("custom"); q != "SELECT 2" {
		t.Fatalf("Expected: SELECT 2; Got: %q", q)
	}
	if len(r.Names()) != 7 {
		t.Fatalf("Expected: 7 names; Got: %v", r.Names())
	}
}
