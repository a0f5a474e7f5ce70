package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/apibase/http"
	"github.com/wesleyorama2/apibase/metrics"
)

// stageOrder is the order stages happen in during one exchange.
var stageOrder = []http.Stage{
	http.StageDNS,
	http.StageConnect,
	http.StageTLS,
	http.StageFirstByte,
	http.StageDownload,
}

var stageLabels = map[http.Stage]string{
	http.StageDNS:       "DNS Lookup",
	http.StageConnect:   "TCP Connection",
	http.StageTLS:       "TLS Handshake",
	http.StageFirstByte: "Time to First Byte",
	http.StageDownload:  "Content Transfer",
}

// Formatter is responsible for formatting results and errors in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatResult formats a successful result for display
func (f *Formatter) FormatResult(method string, result *http.Result) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s %s %s\n",
		SuccessIcon(f.NoColor),
		f.scheme.Method.Sprint(method),
		f.scheme.URL.Sprint(result.URL))

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%s)\n",
		f.scheme.Status(result.StatusCode).Sprintf("%d %s", result.StatusCode, result.StatusMessage),
		formatDuration(result.Timings.Total))

	for i, u := range result.RedirectURLs {
		fmt.Fprintf(&buf, "  Redirect %d: %s\n", i+1, u)
	}

	if f.Verbose {
		if timing := f.formatTimings(result.Timings); timing != "" {
			buf.WriteString(timing)
		}

		buf.WriteString("  Headers:\n")
		for _, key := range sortedHeaderKeys(result.Headers) {
			for _, value := range result.Headers[key] {
				fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(key), value)
			}
		}
	}

	if body := formatBody(result.Body); body != "" {
		buf.WriteString("  Body:\n  ")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatError formats a failed call, including its error kind
func (f *Formatter) FormatError(err error) string {
	var buf strings.Builder

	e, ok := http.AsError(err)
	if !ok {
		fmt.Fprintf(&buf, "%s %s\n", ErrorIcon(f.NoColor), err)
		return buf.String()
	}

	fmt.Fprintf(&buf, "%s %s: %s\n", ErrorIcon(f.NoColor), f.scheme.Kind.Sprint(string(e.Kind)), e.Message)
	if e.Method != "" || e.URL != "" {
		fmt.Fprintf(&buf, "  Request: %s %s\n", f.scheme.Method.Sprint(e.Method), f.scheme.URL.Sprint(e.URL))
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&buf, "  Status: %s\n", f.scheme.Status(e.StatusCode).Sprintf("%d %s", e.StatusCode, e.StatusMessage))
	}
	if e.Event != "" {
		fmt.Fprintf(&buf, "  Event: %s\n", e.Event)
	}
	for i, u := range e.RedirectURLs {
		fmt.Fprintf(&buf, "  Redirect %d: %s\n", i+1, u)
	}
	if e.Cause != nil {
		fmt.Fprintf(&buf, "  Cause: %v\n", e.Cause)
	}
	if body := formatBody(e.Body); body != "" {
		buf.WriteString("  Body:\n  ")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	if f.Verbose && len(e.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedHeaderKeys(e.Headers) {
			fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(key), strings.Join(e.Headers[key], ", "))
		}
	}

	return buf.String()
}

// FormatExtracted formats values pulled out of a body with JSONPath
func (f *Formatter) FormatExtracted(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	buf.WriteString("  Extracted:\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "    %s = %s\n", f.scheme.Label.Sprint(name), values[name])
	}
	return buf.String()
}

// FormatLatency renders HDR latency summaries as a table
func (f *Formatter) FormatLatency(requests, stages []metrics.LatencySummary) string {
	var buf strings.Builder

	buf.WriteString(f.scheme.Label.Sprint("Latency") + "\n")
	writeLatencyTable(&buf, requests, true)

	if len(stages) > 0 {
		buf.WriteString(f.scheme.Label.Sprint("Stages") + "\n")
		writeLatencyTable(&buf, stages, false)
	}
	return buf.String()
}

func writeLatencyTable(buf *strings.Builder, rows []metrics.LatencySummary, withCodes bool) {
	fmt.Fprintf(buf, "  %-32s %6s %10s %10s %10s %10s %10s\n", "", "count", "mean", "p50", "p95", "p99", "max")
	for _, s := range rows {
		fmt.Fprintf(buf, "  %-32s %6d %10s %10s %10s %10s %10s\n",
			s.Key, s.Count,
			formatDuration(s.Mean), formatDuration(s.P50), formatDuration(s.P95),
			formatDuration(s.P99), formatDuration(s.Max))
		if withCodes && len(s.Codes) > 0 {
			fmt.Fprintf(buf, "  %-32s codes: %s\n", "", formatCodes(s.Codes))
		}
	}
}

func (f *Formatter) formatTimings(t http.Timings) string {
	if len(t.Phases) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("  Timing:\n")
	for _, stage := range stageOrder {
		if d, ok := t.Phase(stage); ok {
			fmt.Fprintf(&buf, "    %-20s %s\n", stageLabels[stage]+":", formatDuration(d))
		}
	}
	fmt.Fprintf(&buf, "    %-20s %s\n", "Total:", formatDuration(t.Total))
	return buf.String()
}

func formatCodes(codes map[int]int64) string {
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		label := fmt.Sprint(code)
		if code == metrics.NoResponse {
			label = "none"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", label, codes[code]))
	}
	return strings.Join(parts, " ")
}

// formatBody renders a parsed body: JSON values are pretty-printed, strings
// are printed as they are.
func formatBody(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return formatJSONString(b)
	}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return fmt.Sprintf("%v", body)
	}
	return formatJSONString(strings.TrimSpace(out.String()))
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0ms"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
