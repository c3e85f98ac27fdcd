package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
)

type snowflakeDialect struct{}

func (d snowflakeDialect) DeleteAll(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("delete from %v", t))
}

func (d snowflakeDialect) Truncate(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("truncate table %v", t))
}

func (d snowflakeDialect) InsertSelect(t SchemaTable, selectSql string) (string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return "", err
	}
	return checkedOne(fmt.Sprintf("insert into %v %v", t, s))
}

// CopyJson loads JSON objects by matching top level keys to column names.
// Snowflake has no JSONPaths file so only the automatic mapping is available.
func (d snowflakeDialect) CopyJson(c CopyJsonSpec) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	if !strings.EqualFold(c.jsonOption(), constants.CopyJsonOptionAuto) {
		return "", fmt.Errorf("snowflake copy supports only the %q JSON option; got %q", constants.CopyJsonOptionAuto, c.JsonOption)
	}
	creds := fmt.Sprintf("aws_key_id=%v aws_secret_key=%v", quoteLiteral(c.AccessKeyId), quoteLiteral(c.SecretAccessKey))
	if c.SessionToken != "" {
		creds += fmt.Sprintf(" aws_token=%v", quoteLiteral(c.SessionToken))
	}
	return checkedOne(fmt.Sprintf("copy into %v\nfrom %v\ncredentials=(%v)\nfile_format=(type=json strip_outer_array=true)\nmatch_by_column_name=case_insensitive",
		c.Table, quoteLiteral(c.SourcePath), creds))
}

func (d snowflakeDialect) UpsertStatements(t SchemaTable, selectSql string, primaryKey string) ([]string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return nil, err
	}
	if err := ValidateColumnName(primaryKey); err != nil {
		return nil, err
	}
	tmp := t.PrefixTable(constants.StagingTablePrefix)
	return checked(
		fmt.Sprintf("drop table if exists %v", tmp),
		fmt.Sprintf("create temporary table %v like %v", tmp, t),
		fmt.Sprintf("insert into %v %v", tmp, s),
		fmt.Sprintf("delete from %v using %v where %v.%v = %v.%v", t, tmp, t, primaryKey, tmp, primaryKey),
		fmt.Sprintf("insert into %v select * from %v", t, tmp),
		fmt.Sprintf("drop table if exists %v", tmp),
	)
}
