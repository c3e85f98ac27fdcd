package rdbms

import (
	"fmt"

	"github.com/relloyd/sparkpipe/constants"
)

// sqlServerDialect uses a #local temp table for upserts.
type sqlServerDialect struct{}

func (d sqlServerDialect) DeleteAll(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("DELETE FROM %v", t))
}

func (d sqlServerDialect) Truncate(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("TRUNCATE TABLE %v", t))
}

func (d sqlServerDialect) InsertSelect(t SchemaTable, selectSql string) (string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return "", err
	}
	return checkedOne(fmt.Sprintf("INSERT INTO %v %v", t, s))
}

func (d sqlServerDialect) CopyJson(c CopyJsonSpec) (string, error) {
	return "", ErrCopyUnsupported{Dialect: constants.ConnectionTypeSqlServer}
}

func (d sqlServerDialect) UpsertStatements(t SchemaTable, selectSql string, primaryKey string) ([]string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return nil, err
	}
	if err := ValidateColumnName(primaryKey); err != nil {
		return nil, err
	}
	tmp := "#" + t.PrefixTable(constants.StagingTablePrefix)
	return checked(
		fmt.Sprintf("DROP TABLE IF EXISTS %v", tmp),
		fmt.Sprintf("SELECT TOP 0 * INTO %v FROM %v", tmp, t),
		fmt.Sprintf("INSERT INTO %v %v", tmp, s),
		fmt.Sprintf("DELETE tgt FROM %v AS tgt INNER JOIN %v AS stg ON tgt.%v = stg.%v", t, tmp, primaryKey, primaryKey),
		fmt.Sprintf("INSERT INTO %v SELECT * FROM %v", t, tmp),
		fmt.Sprintf("DROP TABLE IF EXISTS %v", tmp),
	)
}
