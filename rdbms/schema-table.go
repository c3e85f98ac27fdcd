package rdbms

import (
	"fmt"
	"regexp"
	"strings"
)

const identPattern = `(?:[A-Za-z_][A-Za-z0-9_$]*|"[^"]+")`

var (
	reSchemaTable = regexp.MustCompile(`^(?:(` + identPattern + `)\.)?(` + identPattern + `)$`)
	reColumn      = regexp.MustCompile(`^` + identPattern + `$`)
)

// SchemaTable is a validated [<schema>.]<table> reference.
// Names are either plain identifiers or double-quoted, so they can be interpolated into SQL.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
	schema      string
	table       string
}

// NewSchemaTable parses s and returns an error if it is not a safe table reference.
func NewSchemaTable(s string) (SchemaTable, error) {
	s = strings.TrimSpace(s)
	m := reSchemaTable.FindStringSubmatch(s)
	if m == nil {
		return SchemaTable{}, fmt.Errorf("invalid table name %q: expected [<schema>.]<table> using plain or double-quoted identifiers", s)
	}
	return SchemaTable{SchemaTable: s, schema: m[1], table: m[2]}, nil
}

// MustNewSchemaTable is NewSchemaTable for literals known to be valid.
func MustNewSchemaTable(s string) SchemaTable {
	st, err := NewSchemaTable(s)
	if err != nil {
		panic(err)
	}
	return st
}

func (st SchemaTable) GetSchema() string {
	return st.schema
}

func (st SchemaTable) GetTable() string {
	return st.table
}

// PrefixTable returns the table name, without schema, with prefix inserted.
// A quoted table keeps its quotes: "Songs" becomes "stage_Songs".
func (st SchemaTable) PrefixTable(prefix string) string {
	if strings.HasPrefix(st.table, `"`) {
		return `"` + prefix + strings.TrimPrefix(st.table, `"`)
	}
	return prefix + st.table
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}

// ValidateColumnName returns an error unless c is a plain or double-quoted identifier.
func ValidateColumnName(c string) error {
	if !reColumn.MatchString(c) {
		return fmt.Errorf("invalid column name %q", c)
	}
	return nil
}
