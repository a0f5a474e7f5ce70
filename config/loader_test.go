package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/apibase/http"
)

const yamlConfig = `
defaultProfile: dev
profiles:
  dev:
    baseUrl: http://localhost:8080/api
    timeout: 2 seconds
    maxRedirects: 1
    headers:
      Authorization: "Bearer {{token}}"
      X-Trace: "{{env.APIBASE_TEST_TRACE}}"
    variables:
      token: dev-token
  prod:
    baseUrl: https://api.example.com
requests:
  getUser:
    method: GET
    path: /users/{id}
    params:
      id: "{{userId}}"
    extract:
      name: $.name
  createUser:
    method: post
    path: /users
    schema: schemas/user.json
    body:
      name: Jane
      tags: [a, b]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "apibase.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"dev", "prod"}, cfg.ProfileNames())
	assert.Equal(t, []string{"createUser", "getUser"}, cfg.RequestNames())

	dev := cfg.Profiles["dev"]
	assert.Equal(t, "http://localhost:8080/api", dev.BaseURL)
	require.NotNil(t, dev.MaxRedirects)
	assert.Equal(t, 1, *dev.MaxRedirects)

	create, err := cfg.Request("createUser")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Jane", "tags": []any{"a", "b"}}, create.Body)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "schemas/user.json"), cfg.SchemaPath(create))

	_, err = cfg.Request("missing")
	assert.Error(t, err)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "apibase.json", `{
		"profiles": {"only": {"baseUrl": "https://api.example.com", "timeout": "750ms"}},
		"requests": {"ping": {"method": "GET", "path": "/ping"}}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	name, profile, err := cfg.SelectProfile("")
	require.NoError(t, err)
	assert.Equal(t, "only", name)
	assert.Equal(t, "750ms", profile.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = Load(writeFile(t, "bad.json", `{"profiles": `))
	assert.ErrorContains(t, err, "error parsing config file")

	_, err = Load(writeFile(t, "unknown.yaml", "profiles: {}\nenvironments: {}\n"))
	assert.ErrorContains(t, err, "error parsing config file")

	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Profiles)
}

func TestSelectProfile(t *testing.T) {
	t.Setenv(ProfileEnvVar, "")

	cfg, err := Load(writeFile(t, "apibase.yaml", yamlConfig))
	require.NoError(t, err)

	name, _, err := cfg.SelectProfile("")
	require.NoError(t, err)
	assert.Equal(t, "dev", name)

	t.Setenv(ProfileEnvVar, "prod")
	name, profile, err := cfg.SelectProfile("")
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
	assert.Equal(t, "https://api.example.com", profile.BaseURL)

	name, _, err = cfg.SelectProfile("dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", name)

	_, _, err = cfg.SelectProfile("staging")
	assert.ErrorContains(t, err, "profile not found: staging")

	t.Setenv(ProfileEnvVar, "")

	ambiguous := &File{Profiles: map[string]Profile{"a": {}, "b": {}}}
	_, _, err = ambiguous.SelectProfile("")
	assert.ErrorContains(t, err, "a, b")
}

func TestProfile_ClientOptions(t *testing.T) {
	t.Setenv("APIBASE_TEST_TRACE", "trace-1")

	cfg, err := Load(writeFile(t, "apibase.yaml", yamlConfig))
	require.NoError(t, err)

	profile := cfg.Profiles["dev"]
	opts, err := profile.ClientOptions()
	require.NoError(t, err)

	client, err := http.NewClient(profile.BaseURL, opts...)
	require.NoError(t, err)

	c := client.Config()
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.Equal(t, 1, c.MaxRedirects)
	assert.Equal(t, "Bearer dev-token", c.Headers["Authorization"])
	assert.Equal(t, "trace-1", c.Headers["X-Trace"])

	_, err = Profile{Timeout: "soon"}.ClientOptions()
	assert.Error(t, err)
}

func TestRequest_Resolve(t *testing.T) {
	req := Request{
		Params:  map[string]any{"id": "{{userId}}", "limit": 10},
		Headers: map[string]string{"X-User": "{{userId}}"},
	}

	resolved := req.Resolve(map[string]string{"userId": "42"})
	assert.Equal(t, map[string]any{"id": "42", "limit": 10}, resolved.Params)
	assert.Equal(t, "42", resolved.Headers["X-User"])
	assert.Equal(t, "{{userId}}", req.Params["id"], "original must not change")
}

func TestParseDurationString(t *testing.T) {
	tests := map[string]time.Duration{
		"30s":              30 * time.Second,
		"1m30s":            90 * time.Second,
		"30 seconds":       30 * time.Second,
		"1 minute":         time.Minute,
		"2 hours":          2 * time.Hour,
		"250 milliseconds": 250 * time.Millisecond,
		" 5m ":             5 * time.Minute,
	}
	for input, expected := range tests {
		got, err := ParseDurationString(input)
		if assert.NoError(t, err, input) {
			assert.Equal(t, expected, got, input)
		}
	}

	for _, input := range []string{"", "soon", "5 fortnights"} {
		_, err := ParseDurationString(input)
		assert.Error(t, err, input)
	}
}

func TestProcessVariables(t *testing.T) {
	t.Setenv("APIBASE_TEST_VAR", "from-env")

	vars := map[string]string{"user": "alice", "id": "7"}

	assert.Equal(t, "alice/7", ProcessVariables("{{user}}/{{ id }}", vars))
	assert.Equal(t, "from-env", ProcessVariables("{{env.APIBASE_TEST_VAR}}", vars))
	assert.Equal(t, "{{unknown}}", ProcessVariables("{{unknown}}", vars))
	assert.Equal(t, "{{env.APIBASE_TEST_UNSET}}", ProcessVariables("{{env.APIBASE_TEST_UNSET}}", vars))
	assert.Nil(t, Substitute(nil, vars))
}

func TestProfile_UnsupportedProtocolSurfacesFromClient(t *testing.T) {
	profile := Profile{BaseURL: "ftp://files.example.com"}
	opts, err := profile.ClientOptions()
	require.NoError(t, err)

	_, err = http.NewClient(profile.BaseURL, opts...)
	assert.ErrorIs(t, err, http.ErrUnsupportedProtocol)
}
