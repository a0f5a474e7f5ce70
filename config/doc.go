// Package config loads client profiles and named requests from YAML or JSON
// files.
//
// A configuration file defines:
//   - Profiles: base URL, default headers, timeout, redirect budget and variables
//   - Requests: named request templates with method, path template, params and body
//
// Basic Usage:
//
//	cfg, err := config.Load("apibase.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, profile, err := cfg.SelectProfile("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opts, err := profile.ClientOptions()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := http.NewClient(profile.BaseURL, opts...)
//
// Variable Substitution:
//
// Header values and string params may reference profile variables with the
// {{name}} syntax, and process environment variables with {{env.NAME}}:
//
//	headers:
//	  Authorization: "Bearer {{env.API_TOKEN}}"
//
// Configuration Validation:
//
// The Validate function returns every problem found, not just the first:
//
//	for _, err := range config.Validate(cfg) {
//	    log.Printf("Validation error: %s", err)
//	}
package config
