package shared

import (
	"context"
)

// Connector abstracts all access to Go SQL functionality.
type Connector interface {
	// Go SQL entry points:
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(query string, args ...interface{}) (Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Close()
	// Session pins a single physical connection so that session state such as temp tables
	// survives between statements.
	Session(ctx context.Context) (Session, error)
	// Sparkpipe functionality:
	GetType() string
}

// Session is a single pinned warehouse connection.
type Session interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Close() error
}

// Rows is the subset of *sql.Rows used to stream query results.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}

type ConnectionGetter interface {
	LoadConnection(name string) (ConnectionDetails, error)
}
