package components

import (
	"fmt"

	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

// execer is satisfied by shared.Connector and shared.Session.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (shared.Result, error)
}

// execStatements runs each statement in order and stops at the first error, which is returned as is.
// redact may be nil.
func execStatements(ctx context.Context, log logger.Logger, name string, db execer, rc *RunContext, redact func(string) string, stmts ...string) error {
	for _, stmt := range stmts {
		printable := stmt
		if redact != nil {
			printable = redact(stmt)
		}
		log.Debug(name, " executing SQL: ", printable)
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			log.Error(name, " error executing SQL '", printable, "': ", err)
			return err
		}
		if n, e := res.RowsAffected(); e == nil { // DDL and COPY may not report rows.
			log.Info(name, " rows affected: ", n)
			rc.recordRows(name, n)
		}
	}
	return nil
}

// dialectFor returns the SQL dialect for db.
func dialectFor(db shared.Connector) (rdbms.Dialect, error) {
	if db == nil {
		return nil, fmt.Errorf("missing warehouse connection")
	}
	return rdbms.GetDialect(db.GetType())
}

// newTaskSetup validates cfg and the table name shared by every loader.
func newTaskSetup(cfg interface{}, table string, db shared.Connector) (rdbms.SchemaTable, rdbms.Dialect, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return rdbms.SchemaTable{}, nil, err
	}
	st, err := rdbms.NewSchemaTable(table)
	if err != nil {
		return rdbms.SchemaTable{}, nil, err
	}
	d, err := dialectFor(db)
	if err != nil {
		return rdbms.SchemaTable{}, nil, err
	}
	return st, d, nil
}
