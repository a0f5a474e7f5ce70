package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/wesleyorama2/apibase/pkg/jsonpath"
)

// Result is the outcome of a successful logical request.
type Result struct {
	// StatusCode is the HTTP status code of the final response (e.g., 200, 204)
	StatusCode int

	// StatusMessage is the reason phrase (e.g., "OK")
	StatusMessage string

	// Headers contains the final response headers
	Headers http.Header

	// Body is the parsed body: a decoded JSON value for JSON content types,
	// a string otherwise, and nil when the response carried no body
	Body any

	// RawBody holds the bytes exactly as received
	RawBody []byte

	// URL is the absolute URL that produced this response
	URL string

	// RedirectURLs lists the redirects followed to reach URL, in order
	RedirectURLs []string

	// Timings contains the stage durations of the final hop and the total call time
	Timings Timings
}

// Decode unmarshals the raw body into v.
//
// Example:
//
//	var user User
//	if err := result.Decode(&user); err != nil {
//	    log.Fatal(err)
//	}
func (r *Result) Decode(v any) error {
	if len(r.RawBody) == 0 {
		return errors.New("http: response has no body to decode")
	}
	return json.Unmarshal(r.RawBody, v)
}

// Lookup extracts a single field from a JSON body with a JSONPath-style
// expression such as "$.items[0].id".
func (r *Result) Lookup(path string) (string, bool) {
	v, err := jsonpath.Extract(r.RawBody, path)
	if err != nil {
		return "", false
	}
	return v, true
}

// IsSuccess returns true if the status code is in the 2xx range.
// Results produced by the client are always successful unless an error hook
// synthesized one.
func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// isJSON reports whether the content type declares a JSON document,
// including structured suffixes such as application/problem+json.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// parseBody converts a successful response body. Empty bodies, HEAD responses
// and 204 No Content yield nil. Declared JSON that does not parse is an error.
func parseBody(method Method, status int, header http.Header, raw []byte) (any, error) {
	if len(raw) == 0 || method == MethodHead || status == http.StatusNoContent {
		return nil, nil
	}
	if !isJSON(header.Get("Content-Type")) {
		return string(raw), nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseErrorBody is the lenient variant used for non-2xx responses: a body
// that does not parse is kept as text.
func parseErrorBody(header http.Header, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if isJSON(header.Get("Content-Type")) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

// statusMessage returns the reason phrase of resp ("404 Not Found" gives
// "Not Found"), falling back to the standard text for the code.
func statusMessage(resp *http.Response) string {
	if _, msg, ok := strings.Cut(resp.Status, " "); ok && msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}
