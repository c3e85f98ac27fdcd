package rdbms

import (
	"fmt"

	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

// Querier is satisfied by both shared.Connector and shared.Session.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (shared.Rows, error)
}

// SqlQuery runs sqltext and streams the header then each row to handler.
// Query errors are returned untouched so callers can see the driver's own error.
func SqlQuery(ctx context.Context, log logger.Logger, db Querier, sqltext string, handler shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	log.Debug("query returned columns: ", cols)
	// Scan the values dynamically.
	scanPtrs := make([]interface{}, len(cols))
	scanVals := make([]interface{}, len(cols))
	for idx := range cols {
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, len(cols))
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = handler.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]interface{}, len(cols))
		copy(row, scanVals)
		if err = handler.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ErrStopRows can be returned by a SqlResultHandler to end the fetch early without error.
var ErrStopRows = fmt.Errorf("stop fetching rows")

// FirstRowHandler keeps the first row only.
type FirstRowHandler struct {
	Header []interface{}
	Row    []interface{}
	Found  bool
}

func (h *FirstRowHandler) HandleHeader(i []interface{}) error {
	h.Header = i
	return nil
}

func (h *FirstRowHandler) HandleRow(i []interface{}) error {
	h.Row = i
	h.Found = true
	return ErrStopRows
}

// QueryFirstRow runs sqltext and returns the first row, or found=false when there are no rows.
func QueryFirstRow(ctx context.Context, log logger.Logger, db Querier, sqltext string) (row []interface{}, found bool, err error) {
	h := &FirstRowHandler{}
	err = SqlQuery(ctx, log, db, sqltext, h)
	if err == ErrStopRows {
		err = nil
	}
	return h.Row, h.Found, err
}
