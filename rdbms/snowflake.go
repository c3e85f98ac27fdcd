package rdbms

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
)

const snowflakeScheme = "snowflake://"

type SnowflakeConnectionDetails struct {
	Account   string `errorTxt:"Snowflake account" mandatory:"yes"`
	DBName    string `errorTxt:"Snowflake db name" mandatory:"yes"`
	Schema    string `errorTxt:"Snowflake schema" mandatory:"yes"`
	User      string `errorTxt:"Snowflake username" mandatory:"yes"`
	Password  string `errorTxt:"Snowflake password" mandatory:"yes"`
	Warehouse string `errorTxt:"Snowflake warehouse"`
	RoleName  string `errorTxt:"Snowflake role name"`
}

func (d SnowflakeConnectionDetails) String() string {
	return fmt.Sprintf("%v:%v@%v/%v?schema=%v&warehouse=%v&role=%v",
		d.User,
		"xxxxxxx",
		d.Account,
		d.DBName,
		d.Schema,
		d.Warehouse,
		d.RoleName,
	)
}

// newSnowflakeConnection opens the Snowflake database connection specified in d.
func newSnowflakeConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	details, err := SnowflakeParseDSN(d.Dsn)
	if err != nil {
		return nil, err
	}
	log.Info("Opening Snowflake connection: ", details)
	db, err := sql.Open("snowflake", strings.TrimPrefix(d.Dsn, snowflakeScheme))
	if err != nil {
		return nil, err
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful database connection to Snowflake.")
	return shared.NewConnection(db, constants.ConnectionTypeSnowflake), nil
}

// SnowflakeGetDSN constructs a DSN based on SnowflakeConnectionDetails.
// The prefix 'snowflake://' is added to the DSN.
func SnowflakeGetDSN(c *SnowflakeConnectionDetails) (string, error) {
	cfg := &sf.Config{
		Account:   c.Account,
		Database:  c.DBName,
		Schema:    c.Schema,
		User:      c.User,
		Password:  c.Password,
		Warehouse: c.Warehouse,
		Role:      c.RoleName,
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(dsn, snowflakeScheme) {
		dsn = snowflakeScheme + dsn
	}
	return dsn, nil
}

// SnowflakeParseDSN converts a Snowflake DSN into native connection details.
// The DSN must start with 'snowflake://'.
func SnowflakeParseDSN(d string) (*SnowflakeConnectionDetails, error) {
	if !strings.HasPrefix(d, snowflakeScheme) {
		return nil, errors.New("unsupported Snowflake DSN format")
	}
	cfg, err := sf.ParseDSN(strings.TrimPrefix(d, snowflakeScheme))
	if err != nil {
		return nil, err
	}
	retval := &SnowflakeConnectionDetails{
		User:      cfg.User,
		Password:  cfg.Password,
		Schema:    cfg.Schema,
		DBName:    cfg.Database,
		Account:   cfg.Account,
		RoleName:  cfg.Role,
		Warehouse: cfg.Warehouse,
	}
	if cfg.Region != "" { // if region exists in the parsed config...
		retval.Account = fmt.Sprintf("%v.%v", retval.Account, cfg.Region)
	}
	return retval, nil
}
