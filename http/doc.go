// Package http provides the base for typed JSON API clients.
//
// This package is designed for embedding in API-specific clients and provides:
//   - RFC 6570 path templates, parsed once and cached
//   - JSON request bodies and content-type aware response parsing
//   - Redirect following under a per-call budget
//   - A closed error taxonomy (see Kind) for every failure mode
//   - Request metrics through a metrics.Sink and per-stage timings (DNS, TCP, TLS, TTFB)
//   - Response and error hooks for turning results into domain values
//
// Basic Usage:
//
//	client, err := http.NewClient("https://api.example.com",
//	    http.WithTimeout(5*time.Second),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Get(ctx, "/users/{id}", http.Params{"id": "123"})
//	if err != nil {
//	    if errors.Is(err, http.ErrHTTP) {
//	        e, _ := http.AsError(err)
//	        log.Printf("server said %d %s", e.StatusCode, e.StatusMessage)
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %d, body: %v\n", result.StatusCode, result.Body)
//
// Typed Client Example:
//
//	type Users struct{ c *http.Client }
//
//	func NewUsers(base string) (*Users, error) {
//	    c, err := http.NewClient(base, http.WithErrorHook(
//	        func(ctx context.Context, err error, method, url string) (*http.Result, error) {
//	            if e, ok := http.AsError(err); ok && e.StatusCode == 404 {
//	                return nil, ErrUserNotFound
//	            }
//	            return nil, err
//	        }))
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Users{c: c}, nil
//	}
//
//	func (u *Users) Get(ctx context.Context, id string) (User, error) {
//	    return http.RequestJSON[User](ctx, u.c, http.MethodGet, "/users/{id}", http.Params{"id": id}, nil, nil)
//	}
//
// Thread Safety:
//
// Client is immutable after NewClient returns and is safe for concurrent use.
// The redirect budget is tracked per call, never on the Client.
package http
