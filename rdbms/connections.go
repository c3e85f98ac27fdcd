package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/IBM/nzgo/v12"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/xo/dburl"
)

const pingTimeout = 30 * time.Second

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeRedshift, constants.ConnectionTypePostgres, constants.ConnectionTypeSqlServer:
		db, err = newConnectionWithDsn(log, c.Type, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeNetezza:
		db, err = newNetezzaConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeMock:
		m := shared.NewMockWarehouse()
		m.SetLogger(log)
		db = m
	default:
		err = fmt.Errorf("unsupported database type, %q", c.Type)
	}
	return
}

// newConnectionWithDsn opens Redshift, Postgres and SQL Server connections.
// Redshift speaks the Postgres wire protocol so a redshift:// DSN is handed to lib/pq as postgres://.
func newConnectionWithDsn(log logger.Logger, connType string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	dsn := d.Dsn
	if connType == constants.ConnectionTypeRedshift && strings.HasPrefix(dsn, "redshift://") {
		dsn = "postgres://" + strings.TrimPrefix(dsn, "redshift://")
	}
	u, err := dburl.Parse(dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %q: %w", d, err)
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return shared.NewConnection(db, connType), nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}
