package components

import (
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

type LoadFactConfig struct {
	Log       logger.Logger    `errorTxt:"logger" mandatory:"yes"`
	Name      string           `errorTxt:"task name" mandatory:"yes"`
	Db        shared.Connector `errorTxt:"warehouse connection" mandatory:"yes"`
	Table     string           `errorTxt:"fact table" mandatory:"yes"`
	SelectSql string           `errorTxt:"select statement" mandatory:"yes"`
}

// LoadFact appends the rows of a SELECT to a fact table.
// It never deduplicates: running it twice over the same staging data loads the rows twice.
type LoadFact struct {
	cfg       LoadFactConfig
	insertSql string
}

func NewLoadFact(cfg *LoadFactConfig) (*LoadFact, error) {
	t, d, err := newTaskSetup(cfg, cfg.Table, cfg.Db)
	if err != nil {
		return nil, err
	}
	insertSql, err := d.InsertSelect(t, cfg.SelectSql)
	if err != nil {
		return nil, err
	}
	return &LoadFact{cfg: *cfg, insertSql: insertSql}, nil
}

func (l *LoadFact) Execute(ctx context.Context, rc *RunContext) error {
	l.cfg.Log.Info(l.cfg.Name, " is running")
	if err := execStatements(ctx, l.cfg.Log, l.cfg.Name, l.cfg.Db, rc, nil, l.insertSql); err != nil {
		return err
	}
	l.cfg.Log.Info(l.cfg.Name, " complete")
	return nil
}

var _ Task = (*LoadFact)(nil)
