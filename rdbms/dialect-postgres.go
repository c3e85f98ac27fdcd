package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
)

// postgresDialect covers Redshift and plain Postgres.
// Only Redshift can COPY from S3.
type postgresDialect struct {
	name    string
	canCopy bool
}

func (d postgresDialect) DeleteAll(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("DELETE FROM %v", t))
}

func (d postgresDialect) Truncate(t SchemaTable) (string, error) {
	return checkedOne(fmt.Sprintf("TRUNCATE TABLE %v", t))
}

func (d postgresDialect) InsertSelect(t SchemaTable, selectSql string) (string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return "", err
	}
	return checkedOne(fmt.Sprintf("INSERT INTO %v %v", t, s))
}

func (d postgresDialect) CopyJson(c CopyJsonSpec) (string, error) {
	if !d.canCopy {
		return "", ErrCopyUnsupported{Dialect: d.name}
	}
	if err := c.validate(); err != nil {
		return "", err
	}
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("COPY %v\nFROM %v\n", c.Table, quoteLiteral(c.SourcePath)))
	b.WriteString(fmt.Sprintf("ACCESS_KEY_ID %v\nSECRET_ACCESS_KEY %v\n", quoteLiteral(c.AccessKeyId), quoteLiteral(c.SecretAccessKey)))
	if c.SessionToken != "" {
		b.WriteString(fmt.Sprintf("SESSION_TOKEN %v\n", quoteLiteral(c.SessionToken)))
	}
	if c.Region != "" {
		b.WriteString(fmt.Sprintf("REGION AS %v\n", quoteLiteral(c.Region)))
	}
	b.WriteString(fmt.Sprintf("FORMAT AS JSON %v", quoteLiteral(c.jsonOption())))
	return checkedOne(b.String())
}

func (d postgresDialect) UpsertStatements(t SchemaTable, selectSql string, primaryKey string) ([]string, error) {
	s, err := trimSelect(selectSql)
	if err != nil {
		return nil, err
	}
	if err := ValidateColumnName(primaryKey); err != nil {
		return nil, err
	}
	tmp := t.PrefixTable(constants.StagingTablePrefix)
	return checked(
		fmt.Sprintf("DROP TABLE IF EXISTS %v", tmp),
		fmt.Sprintf("CREATE TEMP TABLE %v (LIKE %v)", tmp, t),
		fmt.Sprintf("INSERT INTO %v %v", tmp, s),
		fmt.Sprintf("DELETE FROM %v USING %v WHERE %v.%v = %v.%v", t, tmp, t, primaryKey, tmp, primaryKey),
		fmt.Sprintf("INSERT INTO %v SELECT * FROM %v", t, tmp),
		fmt.Sprintf("DROP TABLE IF EXISTS %v", tmp),
	)
}
