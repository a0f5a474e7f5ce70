package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/apibase/config"
	"github.com/wesleyorama2/apibase/http"
	"github.com/wesleyorama2/apibase/internal/output"
	"github.com/wesleyorama2/apibase/metrics"
	"github.com/wesleyorama2/apibase/pkg/jsonpath"
	"github.com/wesleyorama2/apibase/pkg/jsonschema"
)

// metricsNamespace prefixes the exported Prometheus series.
const metricsNamespace = "apibase"

// call is one logical request as assembled from flags or a named request.
type call struct {
	method   http.Method
	template string
	params   http.Params
	body     any
	headers  map[string]string
	timeout  time.Duration
	schema   string
	extract  map[string]string

	// Repetition: repeat calls, at most concurrency in flight, started at
	// no more than rate per second when rate is positive
	repeat      int
	concurrency int
	rate        float64
	metrics     bool
}

// session is a client configured from the global flags and the optional
// configuration file, together with where its output goes.
type session struct {
	client    *http.Client
	tracker   *metrics.LatencyTracker
	registry  *prometheus.Registry
	formatter output.FormatProvider
	out       io.Writer
	errOut    io.Writer
}

// loadProfile reads the configuration file, if any, and selects a profile.
func loadProfile(g *globalFlags) (*config.File, config.Profile, error) {
	if g.configPath == "" {
		if g.profile != "" {
			return nil, config.Profile{}, fmt.Errorf("--profile requires --config")
		}
		return nil, config.Profile{}, nil
	}

	file, err := config.Load(g.configPath)
	if err != nil {
		return nil, config.Profile{}, err
	}
	_, profile, err := file.SelectProfile(g.profile)
	if err != nil {
		return nil, config.Profile{}, err
	}
	return file, profile, nil
}

// newSession builds a client for c. When neither --base-url nor a profile
// supplies a base URL, c.template must be a full URL and is split into base
// and path.
func newSession(cmd *cobra.Command, g *globalFlags, profile config.Profile, c *call) (*session, error) {
	format, err := output.ParseFormat(g.output)
	if err != nil {
		return nil, err
	}

	s := &session{
		tracker: metrics.NewLatencyTracker(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}
	noColor := !output.ColorEnabled(s.out, g.noColor)
	s.formatter = output.GetFormatter(format, g.verbose, noColor)

	baseURL := g.baseURL
	if baseURL == "" {
		baseURL = config.ProcessVariables(profile.BaseURL, profile.Vars)
	}
	if baseURL == "" {
		baseURL, c.template = parseURL(c.template)
	}

	opts, err := profile.ClientOptions()
	if err != nil {
		return nil, err
	}
	headers, err := parseHeaders(g.headers)
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		opts = append(opts, http.WithHeaders(headers))
	}
	if g.timeout > 0 {
		opts = append(opts, http.WithTimeout(g.timeout))
	}
	if g.maxRedirects >= 0 {
		opts = append(opts, http.WithMaxRedirects(g.maxRedirects))
	}
	if g.verbose {
		logger := slog.New(slog.NewTextHandler(s.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, http.WithLogger(logger))
	}

	sinks := []metrics.Sink{s.tracker}
	if c.metrics {
		s.registry = prometheus.NewRegistry()
		collector, err := metrics.RegisterMetrics(s.registry, metrics.Options{Namespace: metricsNamespace})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, collector)
	}
	opts = append(opts, http.WithMetrics(sinks...))

	s.client, err = http.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// run performs the call. A single call prints its full outcome; repeated
// calls print failures as they happen and finish with a latency summary.
// Any failure makes run return errReported.
func (s *session) run(ctx context.Context, c *call) error {
	opts := &http.RequestOptions{Headers: c.headers, Timeout: c.timeout}
	if c.schema != "" {
		schema, err := jsonschema.CompileFile(c.schema)
		if err != nil {
			return err
		}
		opts.OnResponse = http.SchemaHook(schema)
	}

	var failed int
	if c.repeat > 1 {
		failed = s.runMany(ctx, c, opts)
		fmt.Fprint(s.out, s.formatter.FormatLatency(s.tracker.Requests(), s.tracker.Stages()))
	} else {
		failed = s.runOnce(ctx, c, opts)
	}

	if s.registry != nil {
		if err := s.writeMetrics(); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errReported
	}
	return nil
}

// runOnce sends one request and prints the result and extracted values.
func (s *session) runOnce(ctx context.Context, c *call, opts *http.RequestOptions) int {
	result, err := s.client.Request(ctx, c.method, c.template, c.params, c.body, opts)
	if err != nil {
		fmt.Fprint(s.out, s.formatter.FormatError(err))
		return 1
	}

	fmt.Fprint(s.out, s.formatter.FormatResult(string(c.method), result))
	if len(c.extract) == 0 {
		return 0
	}
	values, err := jsonpath.ExtractMultiple(result.RawBody, c.extract)
	fmt.Fprint(s.out, s.formatter.FormatExtracted(values))
	if err != nil {
		fmt.Fprint(s.out, s.formatter.FormatError(err))
		return 1
	}
	return 0
}

// runMany sends c.repeat requests and returns how many failed. Cancelling
// ctx stops starting new requests.
func (s *session) runMany(ctx context.Context, c *call, opts *http.RequestOptions) int {
	var limiter *rate.Limiter
	if c.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.rate), 1)
	}

	var (
		mu     sync.Mutex
		failed int
	)
	g := new(errgroup.Group)
	g.SetLimit(max(c.concurrency, 1))

	for i := 0; i < c.repeat; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := s.client.Request(ctx, c.method, c.template, c.params, c.body, opts)
			if err != nil {
				mu.Lock()
				failed++
				fmt.Fprint(s.out, s.formatter.FormatError(err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return failed
}

// writeMetrics dumps the registry in the Prometheus text exposition format.
func (s *session) writeMetrics() error {
	families, err := s.registry.Gather()
	if err != nil {
		return fmt.Errorf("error gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(s.out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("error encoding metrics: %w", err)
		}
	}
	return nil
}
