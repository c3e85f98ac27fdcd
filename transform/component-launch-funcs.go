package transform

import (
	"fmt"

	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
)

// Keys of TaskDefinition.Data understood by the builders below.
const (
	DataKeyDatabaseConnectionName = "databaseConnectionName"
	DataKeyAwsConnectionName      = "awsConnectionName"
	DataKeyTable                  = "table"
	DataKeySqlQueryName           = "sqlQueryName"
	DataKeySqlText                = "sqlText"
	DataKeyS3Bucket               = "s3Bucket"
	DataKeyS3Key                  = "s3Key"
	DataKeyS3Region               = "region"
	DataKeyJsonOption             = "jsonOption"
	DataKeyAppendInsert           = "appendInsert"
	DataKeyPrimaryKey             = "primaryKey"
	DataKeyTestQuery              = "testQuery"
	DataKeyExpectedResult         = "expectedResult"
)

// TaskBuilderFunc builds a task from its definition.
type TaskBuilderFunc func(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error)

func buildNoOp(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	return components.NewNoOp(&components.NoOpConfig{Log: log, Name: taskName}), nil
}

func buildSqlExec(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	db, err := rm.getDBConnector(td.Data[DataKeyDatabaseConnectionName])
	if err != nil {
		return nil, err
	}
	script, err := getSql(taskName, td, rm)
	if err != nil {
		return nil, err
	}
	return components.NewSqlExec(&components.SqlExecConfig{
		Log:    log,
		Name:   taskName,
		Db:     db,
		Script: script,
	})
}

func buildStageToWarehouse(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	db, err := rm.getDBConnector(td.Data[DataKeyDatabaseConnectionName])
	if err != nil {
		return nil, err
	}
	return components.NewStageToWarehouse(&components.StageToWarehouseConfig{
		Log:             log,
		Name:            taskName,
		Db:              db,
		Credentials:     rm.getCredentialsGetter(),
		CredentialsName: td.Data[DataKeyAwsConnectionName],
		Table:           td.Data[DataKeyTable],
		Bucket:          td.Data[DataKeyS3Bucket],
		KeyTemplate:     td.Data[DataKeyS3Key],
		JsonOption:      td.Data[DataKeyJsonOption],
		Region:          td.Data[DataKeyS3Region],
		ListerFn:        rm.getListerFunc(),
	})
}

func buildLoadFact(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	db, err := rm.getDBConnector(td.Data[DataKeyDatabaseConnectionName])
	if err != nil {
		return nil, err
	}
	sel, err := getSql(taskName, td, rm)
	if err != nil {
		return nil, err
	}
	return components.NewLoadFact(&components.LoadFactConfig{
		Log:       log,
		Name:      taskName,
		Db:        db,
		Table:     td.Data[DataKeyTable],
		SelectSql: sel,
	})
}

func buildLoadDimension(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	db, err := rm.getDBConnector(td.Data[DataKeyDatabaseConnectionName])
	if err != nil {
		return nil, err
	}
	sel, err := getSql(taskName, td, rm)
	if err != nil {
		return nil, err
	}
	return components.NewLoadDimension(&components.LoadDimensionConfig{
		Log:          log,
		Name:         taskName,
		Db:           db,
		Table:        td.Data[DataKeyTable],
		SelectSql:    sel,
		AppendInsert: helper.GetTrueFalseStringAsBool(td.Data[DataKeyAppendInsert]),
		PrimaryKey:   td.Data[DataKeyPrimaryKey],
	})
}

func buildDataQuality(log logger.Logger, taskName string, td TaskDefinition, rm ResourceManager) (components.Task, error) {
	db, err := rm.getDBConnector(td.Data[DataKeyDatabaseConnectionName])
	if err != nil {
		return nil, err
	}
	expected, ok := td.Data[DataKeyExpectedResult]
	if !ok {
		return nil, fmt.Errorf("task %q: missing %v", taskName, DataKeyExpectedResult)
	}
	return components.NewDataQuality(&components.DataQualityConfig{
		Log:            log,
		Name:           taskName,
		Db:             db,
		TestQuery:      td.Data[DataKeyTestQuery],
		ExpectedResult: expected,
	})
}

// getSql returns the literal sqlText of a task or the registry entry named by sqlQueryName.
func getSql(taskName string, td TaskDefinition, rm ResourceManager) (string, error) {
	text, name := td.Data[DataKeySqlText], td.Data[DataKeySqlQueryName]
	switch {
	case text != "" && name != "":
		return "", fmt.Errorf("task %q: supply only one of %v and %v", taskName, DataKeySqlText, DataKeySqlQueryName)
	case text != "":
		return text, nil
	case name != "":
		return rm.getSqlRegistry().Get(name)
	}
	return "", fmt.Errorf("task %q: missing %v or %v", taskName, DataKeySqlText, DataKeySqlQueryName)
}
