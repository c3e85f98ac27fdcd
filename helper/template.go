package helper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/drone/envsubst"
)

// RenderTemplate replaces ${name} references in s with values from vars.
// Default syntax such as ${name:-x} is honoured, but a plain reference to a name that is
// not in vars is an error so that a typo never reaches the warehouse as an empty string.
func RenderTemplate(s string, vars map[string]string) (string, error) {
	missing := make(map[string]struct{})
	out, err := envsubst.Eval(s, func(name string) string {
		v, ok := vars[name]
		if !ok {
			missing[name] = struct{}{}
		}
		return v
	})
	if err != nil {
		return "", fmt.Errorf("error rendering template %q: %w", s, err)
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for k := range missing {
			if !hasDefault(s, k) {
				names = append(names, k)
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			return "", fmt.Errorf("unknown template variable(s) %v in %q", strings.Join(names, ", "), s)
		}
	}
	return out, nil
}

func hasDefault(s string, name string) bool {
	for _, op := range []string{":-", ":=", "-", "="} {
		if strings.Contains(s, "${"+name+op) {
			return true
		}
	}
	return false
}
