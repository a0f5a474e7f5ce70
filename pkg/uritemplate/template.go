package uritemplate

import (
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Template string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("uritemplate: %s in %q", e.Reason, e.Template)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ExpandError reports a value that could not be expanded, such as invalid
// UTF-8 or a prefix length that cuts a multibyte character.
type ExpandError struct {
	Template string
	Err      error
}

// Error implements the error interface.
func (e *ExpandError) Error() string {
	return fmt.Sprintf("uritemplate: expanding %q: %v", e.Template, e.Err)
}

func (e *ExpandError) Unwrap() error {
	return e.Err
}

// Template is a parsed URI template. It is immutable and safe for concurrent use.
type Template struct {
	tmpl *uritemplate.Template
}

// String returns the template text the Template was parsed from.
func (t *Template) String() string {
	return t.tmpl.Raw()
}

// Varnames returns the variable names used in the template, in order of first use.
func (t *Template) Varnames() []string {
	return t.tmpl.Varnames()
}

// parse builds a Template from raw without consulting any cache.
func parse(raw string) (*Template, error) {
	tmpl, err := uritemplate.New(raw)
	if err != nil {
		return nil, &SyntaxError{Template: raw, Reason: err.Error(), Err: err}
	}
	return &Template{tmpl: tmpl}, nil
}
