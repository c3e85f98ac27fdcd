package helper

import (
	"encoding/csv"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reTrue = regexp.MustCompile("(?i)^true$")

// CsvStringOfTokensToMap expects a CSV of tokens
// "testA:testB, xyz1:abc2, ""j kh3: r st4"", ""j kh3:xyz""
// and returns:
// m[testA]=testB
// m[xyz1]=abc2
// m["j kh3"]=xyz
// It will take the last seen value for a given token.
// Only the first colon splits key from value so values may contain colons.
func CsvStringOfTokensToMap(s string) (map[string]string, error) {
	m := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	r := csv.NewReader(strings.NewReader(s))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, line := range records {
		for _, v := range line {
			k, val := Split(v, ":")
			k = strings.TrimSpace(k)
			if k == "" {
				return nil, fmt.Errorf("missing key in token %q", v)
			}
			m[k] = strings.TrimSpace(val)
		}
	}
	return m, nil
}

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1, f2, f3' into a slice of string values.
// Empty values are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	retval := make([]string, 0)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// GetStringFromInterface will convert interface{} value to a string.
// It gives the canonical form used to compare scalar results from different drivers:
// integers without decimals, floats without exponents, times in UTC.
func GetStringFromInterface(input interface{}) (string, error) {
	switch v := input.(type) {
	case int, int8, int16, int32, int64, uint, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case uint8:
		return strconv.Itoa(int(v)), nil
	case string:
		return v, nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case *big.Int:
		return v.String(), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	case []uint8: // numeric columns arrive as bytes from lib/pq and friends.
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unhandled type while fetching string from interface: type = %v; value = %v", reflect.TypeOf(input), input)
	}
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it is (case insensitive) "true".
func GetTrueFalseStringAsBool(s string) bool {
	return reTrue.MatchString(strings.TrimSpace(s))
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// EscapeSingleQuotes doubles any single quotes so s can sit inside a SQL string literal.
func EscapeSingleQuotes(s string) string {
	return strings.Replace(s, `'`, `''`, -1)
}

// RedactSecret keeps the first and last characters of s so logs can identify a key without leaking it.
func RedactSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
