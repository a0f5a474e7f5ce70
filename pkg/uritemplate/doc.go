// Package uritemplate expands RFC 6570 URI Templates up to level 4 on top of
// github.com/yosida95/uritemplate/v3.
//
// Templates are parsed once and memoized in a Cache keyed by the template text:
//
//	t, err := uritemplate.Parse("/users/{id}{?fields*}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := t.Expand(map[string]any{
//	    "id":     "123",
//	    "fields": []string{"name", "email"},
//	})
//	// path == "/users/123?fields=name&fields=email"
//
// Supported values are strings, booleans, numbers, fmt.Stringer, slices (lists),
// and string-keyed maps or []KV (associative arrays). Map keys expand in sorted
// order; use []KV to control the order explicitly. Prefix lengths count bytes,
// and a prefix that cuts a multibyte character fails with an *ExpandError.
package uritemplate
