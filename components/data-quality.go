package components

import (
	"fmt"

	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

const noRows = "<no rows>"

// DataQualityError is returned when a check query does not produce the expected value.
type DataQualityError struct {
	Query    string
	Actual   string
	Expected string
	NoRows   bool
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality check failed: %v does not equal %v", e.Actual, e.Expected)
}

type DataQualityConfig struct {
	Log            logger.Logger    `errorTxt:"logger" mandatory:"yes"`
	Name           string           `errorTxt:"task name" mandatory:"yes"`
	Db             shared.Connector `errorTxt:"warehouse connection" mandatory:"yes"`
	TestQuery      string           `errorTxt:"test query" mandatory:"yes"`
	ExpectedResult interface{}      `errorTxt:"expected result" mandatory:"yes"`
}

// DataQuality compares the first value returned by TestQuery to ExpectedResult.
type DataQuality struct {
	cfg      DataQualityConfig
	expected string
}

func NewDataQuality(cfg *DataQualityConfig) (*DataQuality, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if err := rdbms.ValidateStatement(cfg.TestQuery); err != nil {
		return nil, err
	}
	expected, err := helper.GetStringFromInterface(cfg.ExpectedResult)
	if err != nil {
		return nil, err
	}
	return &DataQuality{cfg: *cfg, expected: expected}, nil
}

func (q *DataQuality) Execute(ctx context.Context, rc *RunContext) error {
	cfg := q.cfg
	cfg.Log.Info(cfg.Name, " is running")
	row, found, err := rdbms.QueryFirstRow(ctx, cfg.Log, cfg.Db, cfg.TestQuery)
	if err != nil {
		return err
	}
	if !found || len(row) == 0 {
		cfg.Log.Error(cfg.Name, " ", cfg.TestQuery, " returned no rows")
		return &DataQualityError{Query: cfg.TestQuery, Actual: noRows, Expected: q.expected, NoRows: true}
	}
	actual, err := helper.GetStringFromInterface(row[0])
	if err != nil {
		return err
	}
	if actual != q.expected {
		e := &DataQualityError{Query: cfg.TestQuery, Actual: actual, Expected: q.expected}
		cfg.Log.Error(cfg.Name, " ", e)
		return e
	}
	cfg.Log.Info(cfg.Name, " passed: ", cfg.TestQuery, " returned ", actual)
	cfg.Log.Info(cfg.Name, " complete")
	return nil
}
