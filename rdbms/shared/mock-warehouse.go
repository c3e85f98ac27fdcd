package shared

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
)

// MockWarehouse is an in-memory Connector that understands the small set of statements
// produced by the Postgres-flavoured dialect: CREATE TABLE, CREATE TEMP TABLE ... (LIKE t),
// DROP TABLE, DELETE, TRUNCATE, DELETE ... USING, INSERT INTO ... SELECT and COPY ... FROM.
// SELECT statements are answered from registered results, from SELECT * FROM t and from
// SELECT COUNT(*) FROM t [WHERE col IS NULL].
// Unknown SELECTs return no rows and are logged as a warning.
type MockWarehouse struct {
	mu         sync.Mutex
	log        logger.Logger
	unmatched  []string
	tables     map[string]*mockTable
	objects    map[string][][]interface{}
	queries    map[string]mockResultSet
	failures   []mockFailure
	statements []string
}

type mockTable struct {
	columns []string
	rows    [][]interface{}
}

type mockResultSet struct {
	columns []string
	rows    [][]interface{}
}

type mockFailure struct {
	re  *regexp.Regexp
	err error
}

var (
	reMockSpace       = regexp.MustCompile(`\s+`)
	reMockCreate      = regexp.MustCompile(`(?is)^create table (if not exists )?(\S+) \((.*)\)$`)
	reMockCreateLike  = regexp.MustCompile(`(?is)^create temp(?:orary)? table (\S+) \(like (\S+)\)$`)
	reMockDrop        = regexp.MustCompile(`(?is)^drop table (if exists )?(\S+)$`)
	reMockDeleteUsing = regexp.MustCompile(`(?is)^delete from (\S+) using (\S+) where (\S+)\.(\S+) = (\S+)\.(\S+)$`)
	reMockDeleteAll   = regexp.MustCompile(`(?is)^delete from (\S+)$`)
	reMockTruncate    = regexp.MustCompile(`(?is)^truncate table (\S+)$`)
	reMockInsert      = regexp.MustCompile(`(?is)^insert into (\S+) (select .*)$`)
	reMockCopy        = regexp.MustCompile(`(?is)^copy (\S+) from '([^']*)'`)
	reMockSelectAll   = regexp.MustCompile(`(?is)^select \* from (\S+)$`)
	reMockCount       = regexp.MustCompile(`(?is)^select count\(\*\) from (\S+)(?: where (\S+) is null)?$`)
	reMockConstraint  = regexp.MustCompile(`(?i)^(constraint|primary|unique|foreign|check)\b`)
)

// NewMockWarehouse returns an empty in-memory warehouse.
func NewMockWarehouse() *MockWarehouse {
	return &MockWarehouse{
		log:     logger.NullLogger{},
		tables:  make(map[string]*mockTable),
		objects: make(map[string][][]interface{}),
		queries: make(map[string]mockResultSet),
	}
}

// Set up helpers.

// SetLogger sets the logger used to report SELECTs the warehouse cannot answer.
func (m *MockWarehouse) SetLogger(log logger.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

// UnmatchedQueries returns the SELECTs that were answered with no rows because they were not recognised.
func (m *MockWarehouse) UnmatchedQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.unmatched...)
}

// CreateTable adds an empty table, replacing any table of the same name.
func (m *MockWarehouse) CreateTable(name string, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[mockKey(name)] = &mockTable{columns: lowerAll(columns)}
}

// InsertRows appends rows to an existing table.
func (m *MockWarehouse) InsertRows(name string, rows ...[]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[mockKey(name)]
	if !ok {
		return fmt.Errorf("relation %q does not exist", name)
	}
	return t.append(rows)
}

// PutObjects stores JSON records, already decoded to rows, at an object storage path.
// COPY loads every object whose path starts with its source path.
func (m *MockWarehouse) PutObjects(path string, rows ...[]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = append(m.objects[path], rows...)
}

// ClearObjects removes all stored objects.
func (m *MockWarehouse) ClearObjects() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[string][][]interface{})
}

// RegisterQuery makes query return the given result wherever it is used as a SELECT.
func (m *MockWarehouse) RegisterQuery(query string, columns []string, rows ...[]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[normaliseSql(query)] = mockResultSet{columns: columns, rows: rows}
}

// FailOn makes every statement matching pattern return err.
func (m *MockWarehouse) FailOn(pattern string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, mockFailure{re: regexp.MustCompile(pattern), err: err})
}

// Inspection helpers.

// Rows returns a copy of the rows in table name.
func (m *MockWarehouse) Rows(name string) ([][]interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[mockKey(name)]
	if !ok {
		return nil, false
	}
	out := make([][]interface{}, len(t.rows))
	copy(out, t.rows)
	return out, true
}

// RowCount returns the number of rows in table name or -1 if there is no such table.
func (m *MockWarehouse) RowCount(name string) int {
	rows, ok := m.Rows(name)
	if !ok {
		return -1
	}
	return len(rows)
}

// TableNames returns the sorted names of all tables.
func (m *MockWarehouse) TableNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tables))
	for k := range m.tables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Statements returns every statement received so far, normalised.
func (m *MockWarehouse) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.statements))
	copy(out, m.statements)
	return out
}

// Connector:

func (m *MockWarehouse) Exec(query string, args ...interface{}) (Result, error) {
	return m.ExecContext(context.Background(), query, args...)
}

func (m *MockWarehouse) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.exec(normaliseSql(query))
	if err != nil {
		return nil, err
	}
	return mockResult(n), nil
}

func (m *MockWarehouse) Query(query string, args ...interface{}) (Rows, error) {
	return m.QueryContext(context.Background(), query, args...)
}

func (m *MockWarehouse) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := normaliseSql(query)
	m.statements = append(m.statements, q)
	if err := m.failure(q); err != nil {
		return nil, err
	}
	rs, err := m.selectRows(q)
	if err != nil {
		return nil, err
	}
	return &mockRows{columns: rs.columns, rows: rs.rows, idx: -1}, nil
}

// Session shares state with the warehouse; temp tables are visible to every caller.
func (m *MockWarehouse) Session(ctx context.Context) (Session, error) {
	return mockSession{m}, nil
}

func (m *MockWarehouse) Close() {}

func (m *MockWarehouse) GetType() string {
	return constants.ConnectionTypeMock
}

// exec applies a single statement. The caller holds the lock.
func (m *MockWarehouse) exec(q string) (int64, error) {
	m.statements = append(m.statements, q)
	if err := m.failure(q); err != nil {
		return 0, err
	}
	if s := reMockCreateLike.FindStringSubmatch(q); s != nil {
		src, ok := m.tables[mockKey(s[2])]
		if !ok {
			return 0, fmt.Errorf("relation %q does not exist", s[2])
		}
		if _, exists := m.tables[mockKey(s[1])]; exists {
			return 0, fmt.Errorf("relation %q already exists", s[1])
		}
		m.tables[mockKey(s[1])] = &mockTable{columns: append([]string(nil), src.columns...)}
		return 0, nil
	}
	if s := reMockCreate.FindStringSubmatch(q); s != nil {
		if _, exists := m.tables[mockKey(s[2])]; exists {
			if s[1] != "" {
				return 0, nil
			}
			return 0, fmt.Errorf("relation %q already exists", s[2])
		}
		m.tables[mockKey(s[2])] = &mockTable{columns: parseColumnNames(s[3])}
		return 0, nil
	}
	if s := reMockDrop.FindStringSubmatch(q); s != nil {
		if _, exists := m.tables[mockKey(s[2])]; !exists && s[1] == "" {
			return 0, fmt.Errorf("relation %q does not exist", s[2])
		}
		delete(m.tables, mockKey(s[2]))
		return 0, nil
	}
	if s := reMockDeleteUsing.FindStringSubmatch(q); s != nil {
		return m.deleteUsing(s[1], s[2], s[4], s[6])
	}
	if s := reMockDeleteAll.FindStringSubmatch(q); s != nil {
		return m.clear(s[1])
	}
	if s := reMockTruncate.FindStringSubmatch(q); s != nil {
		return m.clear(s[1])
	}
	if s := reMockInsert.FindStringSubmatch(q); s != nil {
		t, ok := m.tables[mockKey(s[1])]
		if !ok {
			return 0, fmt.Errorf("relation %q does not exist", s[1])
		}
		rs, err := m.selectRows(s[2])
		if err != nil {
			return 0, err
		}
		if err := t.append(rs.rows); err != nil {
			return 0, err
		}
		return int64(len(rs.rows)), nil
	}
	if s := reMockCopy.FindStringSubmatch(q); s != nil {
		t, ok := m.tables[mockKey(s[1])]
		if !ok {
			return 0, fmt.Errorf("relation %q does not exist", s[1])
		}
		paths := make([]string, 0)
		for p := range m.objects {
			if strings.HasPrefix(p, s[2]) {
				paths = append(paths, p)
			}
		}
		sort.Strings(paths)
		var n int64
		for _, p := range paths {
			if err := t.append(m.objects[p]); err != nil {
				return 0, err
			}
			n += int64(len(m.objects[p]))
		}
		return n, nil
	}
	return 0, fmt.Errorf("mock warehouse does not understand statement %q", q)
}

func (m *MockWarehouse) clear(name string) (int64, error) {
	t, ok := m.tables[mockKey(name)]
	if !ok {
		return 0, fmt.Errorf("relation %q does not exist", name)
	}
	n := int64(len(t.rows))
	t.rows = nil
	return n, nil
}

func (m *MockWarehouse) deleteUsing(target, using, targetCol, usingCol string) (int64, error) {
	t, ok := m.tables[mockKey(target)]
	if !ok {
		return 0, fmt.Errorf("relation %q does not exist", target)
	}
	u, ok := m.tables[mockKey(using)]
	if !ok {
		return 0, fmt.Errorf("relation %q does not exist", using)
	}
	ti, err := t.columnIndex(targetCol)
	if err != nil {
		return 0, err
	}
	ui, err := u.columnIndex(usingCol)
	if err != nil {
		return 0, err
	}
	keys := make(map[string]struct{}, len(u.rows))
	for _, r := range u.rows {
		if r[ui] != nil { // NULL never equals anything
			keys[fmt.Sprint(r[ui])] = struct{}{}
		}
	}
	kept := t.rows[:0]
	var n int64
	for _, r := range t.rows {
		if _, match := keys[fmt.Sprint(r[ti])]; match && r[ti] != nil {
			n++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return n, nil
}

func (m *MockWarehouse) selectRows(q string) (mockResultSet, error) {
	q = normaliseSql(q)
	if rs, ok := m.queries[q]; ok {
		return rs, nil
	}
	if s := reMockSelectAll.FindStringSubmatch(q); s != nil {
		t, ok := m.tables[mockKey(s[1])]
		if !ok {
			return mockResultSet{}, fmt.Errorf("relation %q does not exist", s[1])
		}
		rows := make([][]interface{}, len(t.rows))
		copy(rows, t.rows)
		return mockResultSet{columns: t.columns, rows: rows}, nil
	}
	if s := reMockCount.FindStringSubmatch(q); s != nil {
		t, ok := m.tables[mockKey(s[1])]
		if !ok {
			return mockResultSet{}, fmt.Errorf("relation %q does not exist", s[1])
		}
		var n int64
		if s[2] == "" {
			n = int64(len(t.rows))
		} else {
			idx, err := t.columnIndex(s[2])
			if err != nil {
				return mockResultSet{}, err
			}
			for _, r := range t.rows {
				if r[idx] == nil {
					n++
				}
			}
		}
		return mockResultSet{columns: []string{"count"}, rows: [][]interface{}{{n}}}, nil
	}
	m.unmatched = append(m.unmatched, q)
	m.log.Warn("mock warehouse returned no rows for unrecognised query: ", q)
	return mockResultSet{}, nil
}

func (m *MockWarehouse) failure(q string) error {
	for _, f := range m.failures {
		if f.re.MatchString(q) {
			return f.err
		}
	}
	return nil
}

func (t *mockTable) append(rows [][]interface{}) error {
	for _, r := range rows {
		if len(t.columns) > 0 && len(r) != len(t.columns) {
			return fmt.Errorf("INSERT has %v expressions but the table has %v columns", len(r), len(t.columns))
		}
		t.rows = append(t.rows, append([]interface{}(nil), r...))
	}
	return nil
}

func (t *mockTable) columnIndex(col string) (int, error) {
	c := strings.ToLower(strings.Trim(col, `"`))
	for i, v := range t.columns {
		if v == c {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q does not exist", col)
}

// normaliseSql collapses whitespace and drops a trailing semicolon.
func normaliseSql(q string) string {
	q = strings.TrimSpace(reMockSpace.ReplaceAllString(q, " "))
	return strings.TrimSpace(strings.TrimSuffix(q, ";"))
}

// mockKey ignores schema, quotes and case.
func mockKey(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.Trim(name, `"`))
}

func lowerAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(strings.Trim(v, `"`))
	}
	return out
}

// parseColumnNames extracts column names from the body of a CREATE TABLE statement.
func parseColumnNames(body string) []string {
	cols := make([]string, 0)
	depth := 0
	start := 0
	parts := make([]string, 0)
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || reMockConstraint.MatchString(p) {
			continue
		}
		cols = append(cols, strings.ToLower(strings.Trim(strings.Fields(p)[0], `"`)))
	}
	return cols
}

type mockSession struct {
	m *MockWarehouse
}

func (s mockSession) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return s.m.ExecContext(ctx, query, args...)
}

func (s mockSession) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return s.m.QueryContext(ctx, query, args...)
}

func (s mockSession) Close() error {
	return nil
}

type mockResult int64

func (r mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r mockResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

type mockRows struct {
	columns []string
	rows    [][]interface{}
	idx     int
}

func (r *mockRows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *mockRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *mockRows) Scan(dest ...interface{}) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *interface{}:
			*p = row[i]
		case *string:
			*p = fmt.Sprint(row[i])
		case *int64:
			v, ok := row[i].(int64)
			if !ok {
				return fmt.Errorf("cannot scan %T into *int64", row[i])
			}
			*p = v
		default:
			return fmt.Errorf("unsupported Scan destination %T", d)
		}
	}
	return nil
}

func (r *mockRows) Err() error {
	return nil
}

func (r *mockRows) Close() error {
	return nil
}
