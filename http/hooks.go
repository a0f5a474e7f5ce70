package http

import (
	"context"
	"fmt"

	"github.com/wesleyorama2/apibase/pkg/jsonschema"
)

// ResponseHook transforms a successful result before it reaches the caller.
// Returning an error turns the call into a failure; the error hook is not
// consulted for it.
type ResponseHook func(ctx context.Context, result *Result) (*Result, error)

// ErrorHook receives every classified failure together with the method and
// URL of the call. It may return the error unchanged, return a different
// (domain) error, or recover by returning a fallback Result and a nil error.
type ErrorHook func(ctx context.Context, err error, method, url string) (*Result, error)

// PassThrough is the default response hook: it returns the result unchanged.
func PassThrough(_ context.Context, result *Result) (*Result, error) {
	return result, nil
}

// Rethrow is the default error hook: it returns the error unchanged.
func Rethrow(_ context.Context, err error, _, _ string) (*Result, error) {
	return nil, err
}

// ChainResponseHooks runs hooks in order, feeding each the previous result.
// The chain stops at the first error.
func ChainResponseHooks(hooks ...ResponseHook) ResponseHook {
	return func(ctx context.Context, result *Result) (*Result, error) {
		var err error
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			if result, err = hook(ctx, result); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
}

// SchemaHook validates the parsed body of every result against schema.
// Results without a body are passed through untouched.
func SchemaHook(schema *jsonschema.Schema) ResponseHook {
	return func(_ context.Context, result *Result) (*Result, error) {
		if result == nil || result.Body == nil {
			return result, nil
		}
		if err := schema.ValidateValue(result.Body); err != nil {
			return nil, fmt.Errorf("response from %s does not match schema: %w", result.URL, err)
		}
		return result, nil
	}
}

// RequestJSON performs a request and decodes the final result body into T.
// It is the typed entry point for API clients built on Client.
//
// Example:
//
//	user, err := http.RequestJSON[User](ctx, client, http.MethodGet, "/users/{id}", http.Params{"id": "123"}, nil, nil)
func RequestJSON[T any](ctx context.Context, c *Client, method Method, pathTemplate string, params Params, body any, opts *RequestOptions) (T, error) {
	var out T

	result, err := c.Request(ctx, method, pathTemplate, params, body, opts)
	if err != nil {
		return out, err
	}
	if result == nil || len(result.RawBody) == 0 {
		return out, nil
	}
	if err := result.Decode(&out); err != nil {
		return out, fmt.Errorf("decoding %s response: %w", result.URL, err)
	}
	return out, nil
}
