package spider

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// assignRes caches the assignment pattern per variable name.
var assignRes sync.Map

func assignRe(name string) *regexp.Regexp {
	if re, ok := assignRes.Load(name); ok {
		return re.(*regexp.Regexp)
	}

	re, _ := assignRes.LoadOrStore(name, regexp.MustCompile(`(?:var|let|const)\s+`+regexp.QuoteMeta(name)+`\s*=\s*\{`))

	return re.(*regexp.Regexp)
}

// ExtractJSObject returns the object literal assigned to the variable name
// in script, e.g. `var obj = {...};`. Braces inside string literals are
// ignored and the assignment must be terminated by a semicolon.
func ExtractJSObject(script string, name string) (string, error) {
	loc := assignRe(name).FindStringIndex(script)
	if loc == nil {
		return "", fmt.Errorf("%w: no assignment to %s", ErrBlobNotFound, name)
	}

	start := loc[1] - 1
	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(script); i++ {
		c := script[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth > 0 {
				continue
			}

			rest := strings.TrimLeft(script[i+1:], " \t\r\n")
			if !strings.HasPrefix(rest, ";") {
				return "", fmt.Errorf("%w: assignment to %s is not terminated", ErrBlobNotFound, name)
			}

			return script[start : i+1], nil
		}
	}

	return "", fmt.Errorf("%w: unbalanced braces in assignment to %s", ErrBlobNotFound, name)
}
