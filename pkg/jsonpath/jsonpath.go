// Package jsonpath reads fields out of raw JSON response bodies using a small
// JSONPath dialect ($.a.b[0].c), translated to gjson paths.
package jsonpath

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyDocument is returned when the document has no content.
	ErrEmptyDocument = errors.New("jsonpath: empty JSON document")

	// ErrInvalidDocument is returned when the document is not valid JSON.
	ErrInvalidDocument = errors.New("jsonpath: invalid JSON document")

	// ErrNotFound is returned when the path does not resolve to a value.
	ErrNotFound = errors.New("jsonpath: path not found")
)

// Lookup resolves path against doc and returns the raw gjson result.
func Lookup(doc []byte, path string) (gjson.Result, error) {
	if len(doc) == 0 {
		return gjson.Result{}, ErrEmptyDocument
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("jsonpath: empty path expression")
	}
	if !gjson.ValidBytes(doc) {
		return gjson.Result{}, ErrInvalidDocument
	}

	result := gjson.GetBytes(doc, ToGjson(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return result, nil
}

// Extract resolves path and renders the value as a string. JSON null renders
// as "null"; objects and arrays render as their raw JSON.
func Extract(doc []byte, path string) (string, error) {
	result, err := Lookup(doc, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractMultiple resolves several named paths. Values that resolve are
// returned even when others fail; the error lists every failure.
func ExtractMultiple(doc []byte, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("jsonpath: no path expressions provided")
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Extract(doc, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("jsonpath: extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// ToGjson converts a JSONPath expression into gjson syntax:
// $.users[0]['name'] becomes users.0.name and $ becomes @this.
// Paths without a leading $ are assumed to already be gjson paths.
func ToGjson(path string) string {
	if !strings.HasPrefix(path, "$") {
		return path
	}

	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '.':
			if b.Len() > 0 {
				b.WriteByte('.')
			}
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				b.WriteString(path[i:])
				return b.String()
			}
			key := strings.Trim(path[i+1:i+end], `'"`)
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(key)
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
