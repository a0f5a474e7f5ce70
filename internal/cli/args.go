package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wesleyorama2/apibase/http"
)

// parseURL splits a URL or URL template into base URL and path. A missing
// scheme defaults to http. The path keeps its query, fragment and any
// template expressions untouched.
func parseURL(fullURL string) (string, string) {
	// Add scheme if missing
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	scheme, rest, _ := strings.Cut(fullURL, "://")
	end := strings.IndexAny(rest, "/?#{")
	if end < 0 {
		return fullURL, "/"
	}

	baseURL := scheme + "://" + rest[:end]
	path := rest[end:]
	if path[0] == '?' || path[0] == '#' {
		path = "/" + path
	}
	return baseURL, path
}

// parseHeaders turns "Key: Value" arguments into a header map.
func parseHeaders(headers []string) (map[string]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(headers))
	for _, header := range headers {
		key, value, ok := strings.Cut(header, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Key: Value'", header)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// parseParams turns template parameters into Params. "name=value" binds a
// string; repeating a name builds a list. "name:=json" binds a decoded JSON
// value, which is how lists and maps are passed in one argument.
func parseParams(args []string) (http.Params, error) {
	params := make(http.Params, len(args))
	for _, arg := range args {
		if name, raw, ok := strings.Cut(arg, ":="); ok && !strings.Contains(name, "=") {
			if name == "" {
				return nil, fmt.Errorf("invalid parameter %q, missing name", arg)
			}
			var value any
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				return nil, fmt.Errorf("invalid JSON value for parameter %s: %w", name, err)
			}
			params[name] = value
			continue
		}

		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value or name:=json", arg)
		}
		switch existing := params[name].(type) {
		case nil:
			params[name] = value
		case string:
			params[name] = []string{existing, value}
		case []string:
			params[name] = append(existing, value)
		default:
			return nil, fmt.Errorf("parameter %s given both as JSON and as a string", name)
		}
	}
	return params, nil
}

// parseExtract turns "name=path" arguments into named JSONPath expressions.
// A bare path is its own name.
func parseExtract(args []string) map[string]string {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok {
			name, path = arg, arg
		}
		out[name] = path
	}
	return out
}

// parseData reads the request body argument. "@file" reads the body from a
// file. The body must be valid JSON and is sent verbatim.
func parseData(data string) (any, error) {
	if data == "" {
		return nil, nil
	}

	raw := []byte(data)
	if name, ok := strings.CutPrefix(data, "@"); ok {
		var err error
		raw, err = os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("error reading body file: %w", err)
		}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
