package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies one member of the closed error taxonomy. Its value is the
// kind name, so callers can switch on it directly.
type Kind string

const (
	// KindUnsupportedProtocol: the client's base URL scheme is not http or https.
	KindUnsupportedProtocol Kind = "UnsupportedProtocolError"

	// KindHTTP: the server answered with a non-2xx status that was not a followed redirect.
	KindHTTP Kind = "HTTPError"

	// KindParse: the response declared JSON but the body is not valid JSON.
	KindParse Kind = "ParseError"

	// KindMaxRedirects: the redirect budget ran out while still being redirected.
	KindMaxRedirects Kind = "MaxRedirectsError"

	// KindTimeout: the request deadline elapsed or the caller cancelled the call.
	KindTimeout Kind = "TimeoutError"

	// KindRequest: the transport failed before a response arrived (DNS, refused, TLS, ...).
	KindRequest Kind = "RequestError"

	// KindRead: reading the response body failed after the headers were received.
	KindRead Kind = "ReadError"
)

// Sentinels for errors.Is. Matching compares the Kind only:
//
//	if errors.Is(err, http.ErrTimeout) { ... }
var (
	ErrUnsupportedProtocol = &Error{Kind: KindUnsupportedProtocol}
	ErrHTTP                = &Error{Kind: KindHTTP}
	ErrParse               = &Error{Kind: KindParse}
	ErrMaxRedirects        = &Error{Kind: KindMaxRedirects}
	ErrTimeout             = &Error{Kind: KindTimeout}
	ErrRequest             = &Error{Kind: KindRequest}
	ErrRead                = &Error{Kind: KindRead}
)

// Error is the single error type produced by the client. Every failure of a
// request is classified into exactly one Kind; fields that do not apply to a
// kind are left zero.
type Error struct {
	Kind    Kind
	Message string

	// Request context
	Method string
	URL    string

	// Response context (HTTPError, ParseError)
	StatusCode    int
	StatusMessage string
	Headers       http.Header
	Body          any

	// RedirectURLs is the chain of followed redirects (MaxRedirectsError)
	RedirectURLs []string

	// Event names what timed out (TimeoutError): "request" for the client
	// deadline, "abort" for caller cancellation
	Event string

	Cause error
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Method != "" || e.URL != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.URL)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *Error) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Kind: %s\n", e.Kind)
	fmt.Fprintf(&b, "Message: %s\n", e.Message)
	if e.Method != "" {
		fmt.Fprintf(&b, "Method: %s\n", e.Method)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "Status: %d %s\n", e.StatusCode, e.StatusMessage)
	}
	if e.Event != "" {
		fmt.Fprintf(&b, "Event: %s\n", e.Event)
	}
	for i, u := range e.RedirectURLs {
		fmt.Fprintf(&b, "Redirect %d: %s\n", i+1, u)
	}
	if e.Body != nil {
		fmt.Fprintf(&b, "Body: %v\n", e.Body)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "Cause: %v\n", e.Cause)
	}
	return b.String()
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// was not produced by the client.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError unwraps err to the client's *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func newUnsupportedProtocolError(scheme string) *Error {
	return &Error{
		Kind:    KindUnsupportedProtocol,
		Message: fmt.Sprintf("unsupported protocol %q", scheme),
	}
}

func newHTTPError(method, url string, status int, statusMessage string, header http.Header, body any) *Error {
	return &Error{
		Kind:          KindHTTP,
		Message:       fmt.Sprintf("response code %d (%s)", status, statusMessage),
		Method:        method,
		URL:           url,
		StatusCode:    status,
		StatusMessage: statusMessage,
		Headers:       header,
		Body:          body,
	}
}

func newParseError(method, url string, status int, statusMessage string, header http.Header, cause error) *Error {
	return &Error{
		Kind:          KindParse,
		Message:       fmt.Sprintf("invalid JSON in response body (status %d)", status),
		Method:        method,
		URL:           url,
		StatusCode:    status,
		StatusMessage: statusMessage,
		Headers:       header,
		Cause:         cause,
	}
}

func newMaxRedirectsError(method, url string, redirects []string) *Error {
	chain := make([]string, len(redirects))
	copy(chain, redirects)
	return &Error{
		Kind:         KindMaxRedirects,
		Message:      fmt.Sprintf("redirected %d times, aborting", len(chain)),
		Method:       method,
		URL:          url,
		RedirectURLs: chain,
	}
}

func newTimeoutError(method, url, event string, cause error) *Error {
	msg := "request deadline exceeded"
	if event == "abort" {
		msg = "request aborted by caller"
	}
	return &Error{
		Kind:    KindTimeout,
		Message: msg,
		Method:  method,
		URL:     url,
		Event:   event,
		Cause:   cause,
	}
}

func newRequestError(method, url string, cause error) *Error {
	return &Error{
		Kind:    KindRequest,
		Message: "request failed",
		Method:  method,
		URL:     url,
		Cause:   cause,
	}
}

func newReadError(method, url string, status int, cause error) *Error {
	return &Error{
		Kind:       KindRead,
		Message:    "reading response body failed",
		Method:     method,
		URL:        url,
		StatusCode: status,
		Cause:      cause,
	}
}
