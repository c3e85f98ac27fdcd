package rdbms

import (
	"database/sql"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// newNetezzaConnection opens the Netezza database connection specified in d.
func newNetezzaConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	n := shared.NetezzaConnectionDetails{Dsn: d.Dsn}
	dsn, err := n.GetNzgoConnectionString()
	if err != nil {
		return nil, err
	}
	log.Info("Opening Netezza connection: ", n)
	db, err := sql.Open("nzgo", dsn)
	if err != nil {
		return nil, err
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful database connection to Netezza.")
	return shared.NewConnection(db, constants.ConnectionTypeNetezza), nil
}
