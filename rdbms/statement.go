package rdbms

import (
	"fmt"
	"strings"
)

// ValidateStatement checks that generated SQL is well formed enough to send:
// brackets of every kind balance outside string literals and comments, quotes are closed
// and no ${...} template placeholders are left behind.
func ValidateStatement(sql string) error {
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("empty SQL statement")
	}
	closers := map[rune]rune{')': '(', ']': '[', '}': '{'}
	stack := make([]rune, 0)
	var quote rune
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			if r == quote {
				if i+1 < len(runes) && runes[i+1] == quote { // doubled quote is an escape
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		if end := commentEnd(runes, i); end >= 0 {
			i = end
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '$':
			if i+1 < len(runes) && runes[i+1] == '{' {
				return fmt.Errorf("unrendered template placeholder at offset %v in SQL: %v", i, sql)
			}
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != closers[r] {
				return fmt.Errorf("unbalanced %q at offset %v in SQL: %v", r, i, sql)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return fmt.Errorf("unterminated %c quote in SQL: %v", quote, sql)
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q in SQL: %v", stack[len(stack)-1], sql)
	}
	return nil
}

// SplitStatements splits a script on semicolons that sit outside string literals and
// comments. Comments are dropped along with empty statements.
func SplitStatements(script string) []string {
	out := make([]string, 0)
	var b strings.Builder
	var quote rune
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			flush()
			continue
		default:
			if end := commentEnd(runes, i); end >= 0 {
				if runes[end] == '\n' {
					b.WriteRune('\n')
				} else {
					b.WriteRune(' ')
				}
				i = end
				continue
			}
		}
		b.WriteRune(r)
	}
	flush()
	return out
}

// commentEnd returns the index of the last rune of a -- or /* */ comment starting at i,
// or -1 when no comment starts there. Unterminated comments run to the end of the text.
func commentEnd(runes []rune, i int) int {
	if i+1 >= len(runes) {
		return -1
	}
	switch {
	case runes[i] == '-' && runes[i+1] == '-':
		for j := i + 2; j < len(runes); j++ {
			if runes[j] == '\n' {
				return j
			}
		}
		return len(runes) - 1
	case runes[i] == '/' && runes[i+1] == '*':
		for j := i + 2; j+1 < len(runes); j++ {
			if runes[j] == '*' && runes[j+1] == '/' {
				return j + 1
			}
		}
		return len(runes) - 1
	}
	return -1
}
