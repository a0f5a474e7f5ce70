package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wesleyorama2/apibase/http"
	"github.com/wesleyorama2/apibase/pkg/uritemplate"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate validates the configuration and returns a slice of validation errors.
// An empty slice indicates the configuration is valid. Errors are ordered by
// profile and request name.
func Validate(file *File) []ValidationError {
	var errors []ValidationError

	if len(file.Profiles) == 0 {
		errors = append(errors, ValidationError{
			Path:    "profiles",
			Message: "at least one profile is required",
		})
	}

	if file.DefaultProfile != "" {
		if _, ok := file.Profiles[file.DefaultProfile]; !ok {
			errors = append(errors, ValidationError{
				Path:    "defaultProfile",
				Message: fmt.Sprintf("profile not found: %s", file.DefaultProfile),
			})
		}
	}

	for _, name := range file.ProfileNames() {
		errors = append(errors, validateProfile(name, file.Profiles[name])...)
	}

	for _, name := range file.RequestNames() {
		errors = append(errors, validateRequest(name, file.Requests[name])...)
	}

	return errors
}

func validateProfile(name string, profile Profile) []ValidationError {
	var errors []ValidationError
	prefix := "profiles." + name

	if profile.BaseURL == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".baseUrl",
			Message: "baseUrl is required",
		})
	} else if u, err := url.Parse(profile.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Path:    prefix + ".baseUrl",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".baseUrl",
			Message: fmt.Sprintf("unsupported protocol %q, must be http or https", u.Scheme),
		})
	}

	if profile.Timeout != "" {
		if d, err := ParseDurationString(profile.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    prefix + ".timeout",
				Message: fmt.Sprintf("invalid duration: %s", profile.Timeout),
			})
		} else if d <= 0 {
			errors = append(errors, ValidationError{
				Path:    prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}
	}

	if profile.MaxRedirects != nil && *profile.MaxRedirects < 0 {
		errors = append(errors, ValidationError{
			Path:    prefix + ".maxRedirects",
			Message: "maxRedirects cannot be negative",
		})
	}

	return errors
}

func validateRequest(name string, req Request) []ValidationError {
	var errors []ValidationError
	prefix := "requests." + name

	if req.Method == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".method",
			Message: "method is required",
		})
	} else if _, err := http.ParseMethod(req.Method); err != nil {
		errors = append(errors, ValidationError{
			Path:    prefix + ".method",
			Message: fmt.Sprintf("invalid method: %s", req.Method),
		})
	}

	if req.Path == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".path",
			Message: "path is required",
		})
	} else if _, err := uritemplate.Parse(req.Path); err != nil {
		errors = append(errors, ValidationError{
			Path:    prefix + ".path",
			Message: err.Error(),
		})
	}

	if req.Timeout != "" {
		if _, err := ParseDurationString(req.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    prefix + ".timeout",
				Message: fmt.Sprintf("invalid duration: %s", req.Timeout),
			})
		}
	}

	for _, varName := range sortedKeys(req.Extract) {
		if req.Extract[varName] == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("%s.extract.%s", prefix, varName),
				Message: "extract path cannot be empty",
			})
		}
	}

	return errors
}
