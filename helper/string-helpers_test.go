package helper

import (
	"math/big"
	"testing"
	"time"
)

func TestCsvStringOfTokensToMap(t *testing.T) {
	// Test 1
	m, err := CsvStringOfTokensToMap("fieldA:valA")
	if err != nil {
		t.Fatal(err)
	}
	if got := m["fieldA"]; got != "valA" {
		t.Fatalf("expected %q; got %q", "valA", got)
	}
	// Test 2, values keep their own colons.
	m, err = CsvStringOfTokensToMap("\"sqlText:select '10:00' from dual\", env:dev")
	if err != nil {
		t.Fatal(err)
	}
	if got := m["sqlText"]; got != "select '10:00' from dual" {
		t.Fatalf("expected %q; got %q", "select '10:00' from dual", got)
	}
	if got := m["env"]; got != "dev" {
		t.Fatalf("expected %q; got %q", "dev", got)
	}
	// Test 3, empty input.
	m, err = CsvStringOfTokensToMap("  ")
	if err != nil || len(m) != 0 {
		t.Fatalf("expected empty map and no error; got %v, %v", m, err)
	}
	// Test 4, missing key.
	if _, err = CsvStringOfTokensToMap(":value"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestGetStringFromInterface(t *testing.T) {
	cases := []struct {
		in       interface{}
		expected string
	}{
		{int64(5), "5"},
		{0, "0"},
		{float64(12.5), "12.5"},
		{float64(1e21), "1000000000000000000000"},
		{[]byte("0"), "0"},
		{"abc", "abc"},
		{true, "true"},
		{nil, ""},
		{big.NewInt(42), "42"},
		{time.Date(2019, 1, 12, 0, 0, 0, 0, time.UTC), "2019-01-12T00:00:00Z"},
	}
	for _, c := range cases {
		got, err := GetStringFromInterface(c.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.expected {
			t.Fatalf("Expected: %q; Got: %q", c.expected, got)
		}
	}
	if _, err := GetStringFromInterface(struct{}{}); err == nil {
		t.Fatal("expected error for unhandled type")
	}
}

func TestCsvToStringSliceTrimSpaces(t *testing.T) {
	got := CsvToStringSliceTrimSpaces(" a, b ,,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Expected: [a b c]; Got: %v", got)
	}
}

func TestGetTrueFalseStringAsBool(t *testing.T) {
	if !GetTrueFalseStringAsBool(" TRUE ") {
		t.Fatal("expected TRUE to be true")
	}
	if GetTrueFalseStringAsBool("untrue") {
		t.Fatal("expected untrue to be false")
	}
}

func TestEscapeSingleQuotes(t *testing.T) {
	if got := EscapeSingleQuotes("a'b"); got != "a''b" {
		t.Fatalf("Expected: %q; Got: %q", "a''b", got)
	}
}

func TestRedactSecret(t *testing.T) {
	if got := RedactSecret("AKIAABCDEF"); got != "AK******EF" {
		t.Fatalf("Expected: %q; Got: %q", "AK******EF", got)
	}
	if got := RedactSecret("abc"); got != "****" {
		t.Fatalf("Expected: %q; Got: %q", "****", got)
	}
}
