package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/apibase/http"
	"github.com/wesleyorama2/apibase/metrics"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatResult(method string, result *http.Result) string
	FormatError(err error) string
	FormatExtracted(values map[string]string) string
	FormatLatency(requests, stages []metrics.LatencySummary) string
}

// GetFormatter returns the formatter for format.
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &StructuredFormatter{Format: FormatJSON}
	case FormatYAML:
		return &StructuredFormatter{Format: FormatYAML}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// ResultData represents the structured data of a successful call
type ResultData struct {
	Method        string             `json:"method" yaml:"method"`
	URL           string             `json:"url" yaml:"url"`
	StatusCode    int                `json:"statusCode" yaml:"statusCode"`
	StatusMessage string             `json:"statusMessage" yaml:"statusMessage"`
	Headers       map[string]string  `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body          any                `json:"body,omitempty" yaml:"body,omitempty"`
	RedirectURLs  []string           `json:"redirectUrls,omitempty" yaml:"redirectUrls,omitempty"`
	TimingsMs     map[string]float64 `json:"timingsMs,omitempty" yaml:"timingsMs,omitempty"`
	TotalMs       float64            `json:"totalMs" yaml:"totalMs"`
}

// ErrorData represents the structured data of a classified failure
type ErrorData struct {
	Kind          string   `json:"kind" yaml:"kind"`
	Message       string   `json:"message" yaml:"message"`
	Method        string   `json:"method,omitempty" yaml:"method,omitempty"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	StatusCode    int      `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	StatusMessage string   `json:"statusMessage,omitempty" yaml:"statusMessage,omitempty"`
	Body          any      `json:"body,omitempty" yaml:"body,omitempty"`
	RedirectURLs  []string `json:"redirectUrls,omitempty" yaml:"redirectUrls,omitempty"`
	Event         string   `json:"event,omitempty" yaml:"event,omitempty"`
	Cause         string   `json:"cause,omitempty" yaml:"cause,omitempty"`
}

// LatencyData is one latency series in milliseconds
type LatencyData struct {
	Key    string        `json:"key" yaml:"key"`
	Count  int64         `json:"count" yaml:"count"`
	MinMs  float64       `json:"minMs" yaml:"minMs"`
	MeanMs float64       `json:"meanMs" yaml:"meanMs"`
	P50Ms  float64       `json:"p50Ms" yaml:"p50Ms"`
	P95Ms  float64       `json:"p95Ms" yaml:"p95Ms"`
	P99Ms  float64       `json:"p99Ms" yaml:"p99Ms"`
	MaxMs  float64       `json:"maxMs" yaml:"maxMs"`
	Codes  map[int]int64 `json:"codes,omitempty" yaml:"codes,omitempty"`
}

// NewResultData flattens a Result for serialization.
func NewResultData(method string, result *http.Result) ResultData {
	data := ResultData{
		Method:        method,
		URL:           result.URL,
		StatusCode:    result.StatusCode,
		StatusMessage: result.StatusMessage,
		Headers:       flattenHeaders(result.Headers),
		Body:          result.Body,
		RedirectURLs:  result.RedirectURLs,
		TotalMs:       millis(result.Timings.Total),
	}
	if len(result.Timings.Phases) > 0 {
		data.TimingsMs = make(map[string]float64, len(result.Timings.Phases))
		for stage, d := range result.Timings.Phases {
			data.TimingsMs[string(stage)] = millis(d)
		}
	}
	return data
}

// NewErrorData flattens an error for serialization. Errors not produced by
// the client are reported with an empty kind.
func NewErrorData(err error) ErrorData {
	e, ok := http.AsError(err)
	if !ok {
		return ErrorData{Message: err.Error()}
	}
	data := ErrorData{
		Kind:          string(e.Kind),
		Message:       e.Message,
		Method:        e.Method,
		URL:           e.URL,
		StatusCode:    e.StatusCode,
		StatusMessage: e.StatusMessage,
		Body:          e.Body,
		RedirectURLs:  e.RedirectURLs,
		Event:         e.Event,
	}
	if e.Cause != nil {
		data.Cause = e.Cause.Error()
	}
	return data
}

func newLatencyData(s metrics.LatencySummary) LatencyData {
	return LatencyData{
		Key:    s.Key,
		Count:  s.Count,
		MinMs:  millis(s.Min),
		MeanMs: millis(s.Mean),
		P50Ms:  millis(s.P50),
		P95Ms:  millis(s.P95),
		P99Ms:  millis(s.P99),
		MaxMs:  millis(s.Max),
		Codes:  s.Codes,
	}
}

// StructuredFormatter formats output as JSON or YAML documents
type StructuredFormatter struct {
	Format OutputFormat
}

// FormatResult formats a result
func (f *StructuredFormatter) FormatResult(method string, result *http.Result) string {
	return f.marshal(NewResultData(method, result))
}

// FormatError formats an error
func (f *StructuredFormatter) FormatError(err error) string {
	return f.marshal(map[string]ErrorData{"error": NewErrorData(err)})
}

// FormatExtracted formats extracted values
func (f *StructuredFormatter) FormatExtracted(values map[string]string) string {
	return f.marshal(map[string]map[string]string{"extracted": values})
}

// FormatLatency formats latency summaries
func (f *StructuredFormatter) FormatLatency(requests, stages []metrics.LatencySummary) string {
	doc := struct {
		Requests []LatencyData `json:"requests" yaml:"requests"`
		Stages   []LatencyData `json:"stages,omitempty" yaml:"stages,omitempty"`
	}{}
	for _, s := range requests {
		doc.Requests = append(doc.Requests, newLatencyData(s))
	}
	for _, s := range stages {
		doc.Stages = append(doc.Stages, newLatencyData(s))
	}
	return f.marshal(map[string]any{"latency": doc})
}

func (f *StructuredFormatter) marshal(v any) string {
	if f.Format == FormatYAML {
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprintf("error: failed to marshal output: %s\n", err)
		}
		return string(out)
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal output: %s"}`+"\n", err)
	}
	return string(out) + "\n"
}

func flattenHeaders(h map[string][]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for key, values := range h {
		out[key] = strings.Join(values, ", ")
	}
	return out
}

func sortedHeaderKeys(h map[string][]string) []string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
