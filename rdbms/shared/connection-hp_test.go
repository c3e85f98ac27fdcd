package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHpConnection_ExecAndQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	c := NewConnection(db, "redshift")
	defer c.Close()
	mock.ExpectExec("DELETE FROM staging_events").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	res, err := c.Exec("DELETE FROM staging_events")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := res.RowsAffected(); n != 3 {
		t.Fatalf("Expected: 3 rows affected; Got: %v", n)
	}
	rows, err := c.Query("SELECT 1")
	if err != nil {
		t.Fatal(err)
	}
	if !rows.Next() {
		t.Fatal("expected a row")
	}
	var one int64
	if err := rows.Scan(&one); err != nil || one != 1 {
		t.Fatalf("Expected: 1; Got: %v, %v", one, err)
	}
	_ = rows.Close()
	if c.GetType() != "redshift" {
		t.Fatalf("Expected: redshift; Got: %v", c.GetType())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHpConnection_QueryErrorReturnsNilRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	c := NewConnection(db, "redshift")
	defer c.Close()
	dbErr := errors.New("relation does not exist")
	mock.ExpectQuery("SELECT").WillReturnError(dbErr)
	rows, err := c.QueryContext(context.Background(), "SELECT * FROM nope")
	if err != dbErr {
		t.Fatalf("Expected: %v; Got: %v", dbErr, err)
	}
	if rows != nil {
		t.Fatal("expected nil Rows interface on error")
	}
}

func TestHpConnection_Session(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	c := NewConnection(db, "redshift")
	defer c.Close()
	mock.ExpectExec("CREATE TEMP TABLE stage_artists (LIKE artists)").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := c.Session(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ExecContext(context.Background(), "CREATE TEMP TABLE stage_artists (LIKE artists)"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHpConnection_Unconfigured(t *testing.T) {
	c := &HpConnection{}
	if _, err := c.Exec("select 1"); err == nil {
		t.Fatal("expected error from unconfigured connection")
	}
	if _, err := c.Session(context.Background()); err == nil {
		t.Fatal("expected error from unconfigured connection")
	}
}
