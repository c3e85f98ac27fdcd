package shared

import (
	"context"
	"database/sql"
	"errors"
)

// HpConnection is a wrapper around Go native sql.DB.
// database/sql pools physical connections, so concurrent tasks sharing one HpConnection each
// get their own warehouse session per statement.
type HpConnection struct {
	DbSql  *sql.DB
	DbType string
}

// NewConnection wraps an open *sql.DB.
func NewConnection(db *sql.DB, dbType string) *HpConnection {
	return &HpConnection{DbSql: db, DbType: dbType}
}

func (c *HpConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *HpConnection) Session(ctx context.Context) (Session, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	conn, err := c.DbSql.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &HpSession{conn: conn}, nil
}

func (c *HpConnection) Close() {
	if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *HpConnection) GetType() string {
	return c.DbType
}

// HpSession wraps a pinned *sql.Conn.
type HpSession struct {
	conn *sql.Conn
}

func (s *HpSession) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *HpSession) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	r, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close returns the connection to the pool.
func (s *HpSession) Close() error {
	return s.conn.Close()
}
