package rdbms

import (
	"fmt"

	"github.com/relloyd/sparkpipe/constants"
)

type netezzaDialect struct{}

func (d netezzaDialect) DeleteAll(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("DELETE FROM %v", t))
}

func (d netezzaDialect) Truncate(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("TRUNCATE TABLE %v", t))
}

func (d netezzaDialect) InsertSelect(t SchemaTable, selectSql string) (string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return "", err
	}
	return checkedOne(fmt.Sprintf("INSERT INTO %v %v", t, s))
}

func (d netezzaDialect) CopyJson(c CopyJsonSpec) (string, error) {
	return "", ErrCopyUnsupported{Dialect: constants.ConnectionTypeNetezza}
}

func (d netezzaDialect) UpsertStatements(t SchemaTable, selectSql string, primaryKey string) ([]string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return nil, err
	}
	if err := ValidateColumnName(primaryKey); err != nil {
		return nil, err
	}
	tmp := t.PrefixTable(constants.StagingTablePrefix)
	return checked(
		fmt.Sprintf("DROP TABLE %v IF EXISTS", tmp),
		fmt.Sprintf("CREATE TEMP TABLE %v AS SELECT * FROM %v LIMIT 0", tmp, t),
		fmt.Sprintf("INSERT INTO %v %v", tmp, s),
		fmt.Sprintf("DELETE FROM %v WHERE %v IN (SELECT %v FROM %v)", t, primaryKey, primaryKey, tmp),
		fmt.Sprintf("INSERT INTO %v SELECT * FROM %v", t, tmp),
		fmt.Sprintf("DROP TABLE %v IF EXISTS", tmp),
	)
}
