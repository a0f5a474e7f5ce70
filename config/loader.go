package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/apibase/http"
)

// ProfileEnvVar selects the profile when none is given explicitly.
const ProfileEnvVar = "APIBASE_PROFILE"

// File represents the top-level configuration file structure.
type File struct {
	// DefaultProfile is used when no profile is selected explicitly
	DefaultProfile string `json:"defaultProfile,omitempty" yaml:"defaultProfile,omitempty"`

	// Profiles defines target APIs with base URLs and client settings
	Profiles map[string]Profile `json:"profiles" yaml:"profiles"`

	// Requests defines named request templates
	Requests map[string]Request `json:"requests,omitempty" yaml:"requests,omitempty"`

	// dir is the directory the file was loaded from; relative schema paths
	// resolve against it
	dir string
}

// Profile represents the client settings for one API.
type Profile struct {
	// BaseURL is the base URL of every request made with this profile
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Headers are default headers added to all requests
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Timeout is the per-request timeout (e.g. "5s", "1 minute")
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// MaxRedirects overrides the redirect budget; nil keeps the client default
	MaxRedirects *int `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`

	// Vars are variables available to {{name}} substitution
	Vars map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Request represents a named request template.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, etc.)
	Method string `json:"method" yaml:"method"`

	// Path is an RFC 6570 path template, e.g. /users/{id}{?fields*}
	Path string `json:"path" yaml:"path"`

	// Params are the template variables
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	// Headers are request-specific headers
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is the request body (any JSON value)
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Timeout overrides the profile timeout for this request
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Schema is the path of a JSON Schema the response body must satisfy
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Extract names JSONPath expressions to print from the response
	Extract map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
}

// Load loads a configuration file from the given path. Files ending in .json
// are parsed as JSON, everything else as YAML. Unknown YAML keys are errors.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		decoder := yaml.NewDecoder(strings.NewReader(string(data)))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	file.dir = filepath.Dir(path)
	return &file, nil
}

// SelectProfile picks a profile by, in order: the explicit name, the
// APIBASE_PROFILE environment variable, DefaultProfile, or the only profile
// defined.
func (f *File) SelectProfile(name string) (string, Profile, error) {
	if name == "" {
		name = os.Getenv(ProfileEnvVar)
	}
	if name == "" {
		name = f.DefaultProfile
	}
	if name == "" && len(f.Profiles) == 1 {
		for only := range f.Profiles {
			name = only
		}
	}
	if name == "" {
		return "", Profile{}, fmt.Errorf("no profile selected; choose one of: %s", strings.Join(f.ProfileNames(), ", "))
	}

	profile, ok := f.Profiles[name]
	if !ok {
		return "", Profile{}, fmt.Errorf("profile not found: %s", name)
	}
	return name, profile, nil
}

// Request returns a named request.
func (f *File) Request(name string) (Request, error) {
	req, ok := f.Requests[name]
	if !ok {
		return Request{}, fmt.Errorf("request not found: %s", name)
	}
	return req, nil
}

// SchemaPath resolves a request's schema path against the config directory.
func (f *File) SchemaPath(req Request) string {
	if req.Schema == "" || filepath.IsAbs(req.Schema) || f.dir == "" {
		return req.Schema
	}
	return filepath.Join(f.dir, req.Schema)
}

// ProfileNames returns the sorted profile names.
func (f *File) ProfileNames() []string {
	return sortedKeys(f.Profiles)
}

// RequestNames returns the sorted request names.
func (f *File) RequestNames() []string {
	return sortedKeys(f.Requests)
}

// ClientOptions converts the profile into client options. Header values are
// substituted with the profile variables.
func (p Profile) ClientOptions() ([]http.ClientOption, error) {
	var opts []http.ClientOption

	if len(p.Headers) > 0 {
		opts = append(opts, http.WithHeaders(Substitute(p.Headers, p.Vars)))
	}
	if p.Timeout != "" {
		d, err := ParseDurationString(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout '%s': %w", p.Timeout, err)
		}
		opts = append(opts, http.WithTimeout(d))
	}
	if p.MaxRedirects != nil {
		opts = append(opts, http.WithMaxRedirects(*p.MaxRedirects))
	}

	return opts, nil
}

// Resolve substitutes profile variables into the request's headers and
// string params.
func (r Request) Resolve(vars map[string]string) Request {
	out := r
	out.Headers = Substitute(r.Headers, vars)
	if r.Params != nil {
		out.Params = make(map[string]any, len(r.Params))
		for key, value := range r.Params {
			if s, ok := value.(string); ok {
				value = ProcessVariables(s, vars)
			}
			out.Params[key] = value
		}
	}
	return out
}

// ParseDurationString parses duration strings like "30s", "5m", "1h".
// Supports Go duration format and common variants like "30 seconds".
func ParseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// longest words first so "seconds" is not turned into "ss"
	replacements := []struct{ word, abbrev string }{
		{"milliseconds", "ms"},
		{"millisecond", "ms"},
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}
	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// ProcessVariables processes variable substitution in a string.
// {{name}} is replaced from vars and {{env.NAME}} from the process
// environment. Unknown variables are left untouched.
//
// Example:
//
//	token := config.ProcessVariables("Bearer {{token}}", map[string]string{"token": "abc"})
//	// Result: "Bearer abc"
func ProcessVariables(input string, vars map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if envName, ok := strings.CutPrefix(name, "env."); ok {
			if value, found := os.LookupEnv(envName); found {
				return value
			}
			return match
		}
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// Substitute processes variables in every value of a map.
func Substitute(input map[string]string, vars map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessVariables(value, vars)
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
