package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Method is an HTTP method accepted by the client.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPut     Method = http.MethodPut
	MethodPost    Method = http.MethodPost
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// ParseMethod normalizes s and checks that the client supports it.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.valid() {
		return "", fmt.Errorf("http: unsupported method %q", s)
	}
	return m, nil
}

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPut, MethodPost, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return true
	}
	return false
}

// Params holds the variables a path template is expanded with. Values may be
// scalars (string, bool, numbers, fmt.Stringer), lists ([]string, []any) or
// maps (map[string]string, map[string]any).
type Params map[string]any

// RequestOptions overrides client behaviour for a single call. The redirect
// policy and cancellation are always owned by the client and cannot be
// overridden here.
type RequestOptions struct {
	// Headers are merged over the client headers; per-call values win
	Headers map[string]string

	// Timeout replaces the client's request timeout when positive
	Timeout time.Duration

	// OnResponse replaces the client's response hook when set
	OnResponse ResponseHook

	// OnError replaces the client's error hook when set
	OnError ErrorHook
}

// exchange carries the fixed parts of one logical call across redirect hops.
type exchange struct {
	method  Method
	header  http.Header
	body    []byte
	timeout time.Duration

	// mutated per hop
	url       string
	status    int
	redirects []string
	stages    map[Stage]time.Duration
}

// resolveURL joins an expanded path onto base the way a base path prefix is
// expected to work ("https://api/v1" + "/users" is "https://api/v1/users").
// Absolute references replace the base entirely.
func resolveURL(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		return u, nil
	}

	b := *base
	b.RawQuery = ""
	b.Fragment = ""
	prefix := strings.TrimRight(b.String(), "/")

	switch {
	case ref == "":
		return url.Parse(prefix)
	case strings.HasPrefix(ref, "?"), strings.HasPrefix(ref, "#"):
		return url.Parse(prefix + ref)
	default:
		return url.Parse(prefix + "/" + strings.TrimLeft(ref, "/"))
	}
}

// mergeHeaders layers the per-call headers over the client's header set.
func mergeHeaders(base http.Header, overrides map[string]string) http.Header {
	h := base.Clone()
	for key, value := range overrides {
		h.Set(key, value)
	}
	return h
}

// encodeBody serializes a request body. json.RawMessage, []byte and
// io.Reader are sent verbatim; every other value is marshaled as JSON. The
// result is buffered so redirects can replay it.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case io.Reader:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, b); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.Marshal(body)
	}
}
