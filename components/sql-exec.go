package components

import (
	"fmt"

	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

type SqlExecConfig struct {
	Log    logger.Logger    `errorTxt:"logger" mandatory:"yes"`
	Name   string           `errorTxt:"task name" mandatory:"yes"`
	Db     shared.Connector `errorTxt:"warehouse connection" mandatory:"yes"`
	Script string           `errorTxt:"SQL script" mandatory:"yes"`
}

// SqlExec runs each statement of a script in order and stops at the first failure.
type SqlExec struct {
	cfg   SqlExecConfig
	stmts []string
}

func NewSqlExec(cfg *SqlExecConfig) (*SqlExec, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	stmts := rdbms.SplitStatements(cfg.Script)
	if len(stmts) == 0 {
		return nil, fmt.Errorf("%v: script contains no statements", cfg.Name)
	}
	for idx, s := range stmts {
		if err := rdbms.ValidateStatement(s); err != nil {
			return nil, fmt.Errorf("%v: statement %v: %v", cfg.Name, idx+1, err)
		}
	}
	return &SqlExec{cfg: *cfg, stmts: stmts}, nil
}

func (x *SqlExec) Execute(ctx context.Context, rc *RunContext) error {
	x.cfg.Log.Info(x.cfg.Name, " is running")
	if err := execStatements(ctx, x.cfg.Log, x.cfg.Name, x.cfg.Db, rc, nil, x.stmts...); err != nil {
		return err
	}
	x.cfg.Log.Info(x.cfg.Name, " complete")
	return nil
}
