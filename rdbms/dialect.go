package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
)

// Dialect builds the warehouse-specific SQL used by the load tasks.
// Every statement returned has passed ValidateStatement.
type Dialect interface {
	DeleteAll(t SchemaTable) (string, error)
	Truncate(t SchemaTable) (string, error)
	InsertSelect(t SchemaTable, selectSql string) (string, error)
	CopyJson(c CopyJsonSpec) (string, error)
	// UpsertStatements returns the ordered statements that merge selectSql into t keyed on primaryKey
	// via a temp clone of t. They must run on one session.
	UpsertStatements(t SchemaTable, selectSql string, primaryKey string) ([]string, error)
}

// CopyJsonSpec describes a bulk load of JSON objects from object storage.
type CopyJsonSpec struct {
	Table           SchemaTable
	SourcePath      string // s3://bucket/key
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	JsonOption      string // "auto" or the path to a JSONPaths mapping file
}

// Redact hides the credentials of c wherever they appear in sql.
func (c CopyJsonSpec) Redact(sql string) string {
	for _, s := range []string{c.SecretAccessKey, c.SessionToken} {
		if s != "" {
			sql = strings.Replace(sql, helper.EscapeSingleQuotes(s), helper.RedactSecret(s), -1)
		}
	}
	return sql
}

func (c CopyJsonSpec) jsonOption() string {
	if strings.TrimSpace(c.JsonOption) == "" {
		return constants.CopyJsonOptionAuto
	}
	return strings.TrimSpace(c.JsonOption)
}

func (c CopyJsonSpec) validate() error {
	if !strings.HasPrefix(c.SourcePath, "s3://") {
		return fmt.Errorf("unsupported copy source %q: expected s3://<bucket>/<key>", c.SourcePath)
	}
	if c.AccessKeyId == "" || c.SecretAccessKey == "" {
		return fmt.Errorf("missing access key id or secret access key for copy into %v", c.Table)
	}
	return nil
}

// GetDialect returns the Dialect for a connection type.
func GetDialect(connectionType string) (Dialect, error) {
	switch connectionType {
	case constants.ConnectionTypeRedshift, constants.ConnectionTypeMock:
		return postgresDialect{name: connectionType, canCopy: true}, nil
	case constants.ConnectionTypePostgres:
		return postgresDialect{name: connectionType}, nil
	case constants.ConnectionTypeSnowflake:
		return snowflakeDialect{}, nil
	case constants.ConnectionTypeSqlServer:
		return sqlServerDialect{}, nil
	case constants.ConnectionTypeNetezza:
		return netezzaDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q: no SQL dialect available", connectionType)
	}
}

// ErrCopyUnsupported is returned by dialects that cannot bulk load from object storage.
type ErrCopyUnsupported struct {
	Dialect string
}

func (e ErrCopyUnsupported) Error() string {
	return fmt.Sprintf("copy of JSON from object storage is not supported for database type %q", e.Dialect)
}

// trimSelect removes trailing whitespace and semicolons so the select can be embedded.
func trimSelect(s string) (string, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "; \t\r\n")
	if s == "" {
		return "", fmt.Errorf("empty select statement")
	}
	return s, nil
}

func quoteLiteral(s string) string {
	return "'" + helper.EscapeSingleQuotes(s) + "'"
}

// checked validates every statement.
func checked(stmts ...string) ([]string, error) {
	for _, s := range stmts {
		if err := ValidateStatement(s); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

func checkedOne(stmt string) (string, error) {
	if err := ValidateStatement(stmt); err != nil {
		return "", err
	}
	return stmt, nil
}
