package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	errs := map[Kind]*Error{
		KindUnsupportedProtocol: newUnsupportedProtocolError("ftp"),
		KindHTTP:                newHTTPError("GET", "http://x/a", 500, "Internal Server Error", nil, nil),
		KindParse:               newParseError("GET", "http://x/a", 200, "OK", nil, errors.New("bad json")),
		KindMaxRedirects:        newMaxRedirectsError("GET", "http://x/a", []string{"http://x/b"}),
		KindTimeout:             newTimeoutError("GET", "http://x/a", "request", nil),
		KindRequest:             newRequestError("GET", "http://x/a", errors.New("refused")),
		KindRead:                newReadError("GET", "http://x/a", 200, errors.New("reset")),
	}
	sentinels := map[Kind]error{
		KindUnsupportedProtocol: ErrUnsupportedProtocol,
		KindHTTP:                ErrHTTP,
		KindParse:               ErrParse,
		KindMaxRedirects:        ErrMaxRedirects,
		KindTimeout:             ErrTimeout,
		KindRequest:             ErrRequest,
		KindRead:                ErrRead,
	}

	for kind, err := range errs {
		t.Run(string(kind), func(t *testing.T) {
			wrapped := fmt.Errorf("calling api: %w", err)
			assert.Equal(t, kind, KindOf(wrapped))
			for otherKind, sentinel := range sentinels {
				assert.Equal(t, otherKind == kind, errors.Is(wrapped, sentinel), "%s vs %s", kind, otherKind)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := newRequestError("GET", "http://x/users", errors.New("connection refused"))
	assert.Equal(t, "RequestError: request failed (GET http://x/users): connection refused", err.Error())

	err = newUnsupportedProtocolError("ftp")
	assert.Equal(t, `UnsupportedProtocolError: unsupported protocol "ftp"`, err.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestError_TimeoutEvents(t *testing.T) {
	assert.Equal(t, "request deadline exceeded", newTimeoutError("GET", "u", "request", nil).Message)
	assert.Equal(t, "request aborted by caller", newTimeoutError("GET", "u", "abort", nil).Message)
}

func TestError_MaxRedirectsCopiesChain(t *testing.T) {
	chain := []string{"a", "b"}
	err := newMaxRedirectsError("GET", "u", chain)
	chain[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, err.RedirectURLs)
}

func TestError_DebugInfo(t *testing.T) {
	err := newHTTPError("DELETE", "http://x/users/1", 409, "Conflict", nil, map[string]any{"error": "busy"})
	info := err.DebugInfo()

	assert.Contains(t, info, "Kind: HTTPError")
	assert.Contains(t, info, "Method: DELETE")
	assert.Contains(t, info, "URL: http://x/users/1")
	assert.Contains(t, info, "Status: 409 Conflict")
	assert.Contains(t, info, "Body: map[error:busy]")

	var nilErr *Error
	assert.Equal(t, "Error: <nil>", nilErr.DebugInfo())
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
}
