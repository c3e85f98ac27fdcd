package rdbms

import (
	"testing"
)

func TestSchemaTable(t *testing.T) {
	cases := []struct {
		input  string
		schema string
		table  string
		prefix string
	}{
		{"schema.table", "schema", "table", "stage_table"},
		{`schema."table"`, "schema", `"table"`, `"stage_table"`},
		{`"random.table"`, "", `"random.table"`, `"stage_random.table"`},
		{`"schema"."table"`, `"schema"`, `"table"`, `"stage_table"`},
		{"artists", "", "artists", "stage_artists"},
		{"time", "", "time", "stage_time"},
	}
	for _, c := range cases {
		st, err := NewSchemaTable(c.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", c.input, err)
		}
		if got := st.GetSchema(); got != c.schema {
			t.Fatalf("input %q: expected schema = %q; got %q", c.input, c.schema, got)
		}
		if got := st.GetTable(); got != c.table {
			t.Fatalf("input %q: expected table = %q; got %q", c.input, c.table, got)
		}
		if got := st.PrefixTable("stage_"); got != c.prefix {
			t.Fatalf("input %q: expected prefixed table = %q; got %q", c.input, c.prefix, got)
		}
		if got := st.String(); got != c.input {
			t.Fatalf("expected %q; got %q", c.input, got)
		}
	}
}

func TestSchemaTable_Invalid(t *testing.T) {
	for _, input := range []string{"", "songs; drop table users", "a.b.c", "1songs", `"unclosed`, "songs where 1=1"} {
		if _, err := NewSchemaTable(input); err == nil {
			t.Fatalf("expected error for table name %q", input)
		}
	}
}

func TestValidateColumnName(t *testing.T) {
	if err := ValidateColumnName("artistid"); err != nil {
		t.Fatal(err)
	}
	if err := ValidateColumnName(`"Artist Id"`); err != nil {
		t.Fatal(err)
	}
	if err := ValidateColumnName("artistid = 1 or 1"); err == nil {
		t.Fatal("expected error for bad column name")
	}
}
