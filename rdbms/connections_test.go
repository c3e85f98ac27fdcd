package rdbms

import (
	"testing"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

func TestOpenDbConnection_Mock(t *testing.T) {
	db, err := OpenDbConnection(logger.NullLogger{}, shared.ConnectionDetails{Type: constants.ConnectionTypeMock, LogicalName: "mock"})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if db.GetType() != constants.ConnectionTypeMock {
		t.Fatalf("Expected: %v; Got: %v", constants.ConnectionTypeMock, db.GetType())
	}
	if _, ok := db.(*shared.MockWarehouse); !ok {
		t.Fatalf("expected a *shared.MockWarehouse; got %T", db)
	}
}

func TestOpenDbConnection_Unsupported(t *testing.T) {
	if _, err := OpenDbConnection(logger.NullLogger{}, shared.ConnectionDetails{Type: "oracle", LogicalName: "x"}); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestOpenDbConnection_BadDsn(t *testing.T) {
	c := shared.ConnectionDetails{Type: constants.ConnectionTypeSnowflake, LogicalName: "sf", Data: map[string]string{"dsn": "postgres://not-snowflake"}}
	if _, err := OpenDbConnection(logger.NullLogger{}, c); err == nil {
		t.Fatal("expected error for a Snowflake connection without a snowflake:// DSN")
	}
	c = shared.ConnectionDetails{Type: constants.ConnectionTypeNetezza, LogicalName: "nz", Data: map[string]string{"dsn": "netezza://bad"}}
	if _, err := OpenDbConnection(logger.NullLogger{}, c); err == nil {
		t.Fatal("expected error for a bad Netezza DSN")
	}
}

func TestSnowflakeDsnRoundTrip(t *testing.T) {
	d := &SnowflakeConnectionDetails{Account: "acme", DBName: "sparkify", Schema: "public", User: "loader", Password: "pw", Warehouse: "etl"}
	dsn, err := SnowflakeGetDSN(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := SnowflakeParseDSN(dsn)
	if err != nil {
		t.Fatal(err)
	}
	if got.DBName != "sparkify" || got.Warehouse != "etl" || got.User != "loader" {
		t.Fatalf("unexpected parsed details: %+v", got)
	}
}
