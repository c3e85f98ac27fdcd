package components

import (
	"fmt"

	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

type LoadDimensionConfig struct {
	Log          logger.Logger    `errorTxt:"logger" mandatory:"yes"`
	Name         string           `errorTxt:"task name" mandatory:"yes"`
	Db           shared.Connector `errorTxt:"warehouse connection" mandatory:"yes"`
	Table        string           `errorTxt:"dimension table" mandatory:"yes"`
	SelectSql    string           `errorTxt:"select statement" mandatory:"yes"`
	AppendInsert bool             // upsert on PrimaryKey instead of truncate and reload.
	PrimaryKey   string
}

// LoadDimension reloads a dimension table.
// In truncate mode the table is emptied then filled from the SELECT.
// In append mode rows of the SELECT replace target rows with the same primary key via a temp clone
// of the target, so all statements run on one pinned session.
type LoadDimension struct {
	cfg   LoadDimensionConfig
	stmts []string
}

func NewLoadDimension(cfg *LoadDimensionConfig) (*LoadDimension, error) {
	t, d, err := newTaskSetup(cfg, cfg.Table, cfg.Db)
	if err != nil {
		return nil, err
	}
	var stmts []string
	if cfg.AppendInsert {
		if cfg.PrimaryKey == "" {
			return nil, fmt.Errorf("%v: a primary key is required when appending to dimension %v", cfg.Name, t)
		}
		stmts, err = d.UpsertStatements(t, cfg.SelectSql, cfg.PrimaryKey)
		if err != nil {
			return nil, err
		}
	} else {
		truncateSql, err := d.Truncate(t)
		if err != nil {
			return nil, err
		}
		insertSql, err := d.InsertSelect(t, cfg.SelectSql)
		if err != nil {
			return nil, err
		}
		stmts = []string{truncateSql, insertSql}
	}
	return &LoadDimension{cfg: *cfg, stmts: stmts}, nil
}

// Statements returns the SQL this task sends, in order.
func (l *LoadDimension) Statements() []string {
	return append([]string(nil), l.stmts...)
}

func (l *LoadDimension) Execute(ctx context.Context, rc *RunContext) error {
	cfg := l.cfg
	cfg.Log.Info(cfg.Name, " is running")
	if !cfg.AppendInsert {
		if err := execStatements(ctx, cfg.Log, cfg.Name, cfg.Db, rc, nil, l.stmts...); err != nil {
			return err
		}
		cfg.Log.Info(cfg.Name, " complete")
		return nil
	}
	sess, err := cfg.Db.Session(ctx)
	if err != nil {
		cfg.Log.Error(cfg.Name, " unable to open a warehouse session: ", err)
		return err
	}
	defer func() {
		if e := sess.Close(); e != nil {
			cfg.Log.Warn(cfg.Name, " error closing session: ", e)
		}
	}()
	if err = execStatements(ctx, cfg.Log, cfg.Name, sess, rc, nil, l.stmts...); err != nil {
		return err
	}
	cfg.Log.Info(cfg.Name, " complete")
	return nil
}
