package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/apibase/http"
)

// requestFlags holds the flags of the ad-hoc request commands.
type requestFlags struct {
	params  []string
	data    string
	schema  string
	extract []string
	repeat  repeatFlags
}

// repeatFlags controls repeated runs, shared with the run command.
type repeatFlags struct {
	count       int
	concurrency int
	rate        float64
	metrics     bool
}

func (r *repeatFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&r.count, "repeat", "n", 1, "Send the request n times and print a latency summary")
	fs.IntVar(&r.concurrency, "concurrency", 1, "Requests in flight at once when repeating")
	fs.Float64Var(&r.rate, "rate", 0, "Start at most this many requests per second when repeating (0 = unlimited)")
	fs.BoolVar(&r.metrics, "metrics", false, "Print Prometheus metrics after the run")
}

func (r *repeatFlags) validate() error {
	if r.count < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", r.count)
	}
	if r.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", r.concurrency)
	}
	if r.rate < 0 {
		return fmt.Errorf("--rate must not be negative, got %g", r.rate)
	}
	return nil
}

func (r *repeatFlags) apply(c *call) {
	c.repeat = r.count
	c.concurrency = r.concurrency
	c.rate = r.rate
	c.metrics = r.metrics
}

func (r *requestFlags) register(fs *pflag.FlagSet, withBody bool) {
	fs.StringArrayVarP(&r.params, "param", "p", []string{}, "Template parameter name=value or name:=json (can be used multiple times)")
	if withBody {
		fs.StringVarP(&r.data, "data", "d", "", "JSON request body, or @file to read it from a file")
	}
	fs.StringVar(&r.schema, "schema", "", "JSON Schema file the response body must satisfy")
	fs.StringArrayVarP(&r.extract, "extract", "e", []string{}, "JSONPath to print from the response, optionally name=path")
	r.repeat.register(fs)
}

// newRequestCmd builds "request METHOD TEMPLATE".
func newRequestCmd(g *globalFlags) *cobra.Command {
	r := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request METHOD TEMPLATE",
		Short: "Send a request with any method to a URI template",
		Example: `  apibase request GET 'https://api.example.com/users/{id}' -p id=42
  apibase request POST '/users' -b https://api.example.com -d '{"name":"Ada"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := http.ParseMethod(args[0])
			if err != nil {
				return err
			}
			return runRequest(cmd, g, r, method, args[1])
		},
	}
	r.register(cmd.Flags(), true)
	return cmd
}

// newMethodCmd builds a shortcut command such as "get TEMPLATE".
func newMethodCmd(g *globalFlags, method http.Method) *cobra.Command {
	r := &requestFlags{}
	withBody := method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
	cmd := &cobra.Command{
		Use:   strings.ToLower(string(method)) + " TEMPLATE",
		Short: fmt.Sprintf("Make a %s request to the specified URL template", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, g, r, method, args[0])
		},
	}
	r.register(cmd.Flags(), withBody)
	return cmd
}

func runRequest(cmd *cobra.Command, g *globalFlags, r *requestFlags, method http.Method, template string) error {
	params, err := parseParams(r.params)
	if err != nil {
		return err
	}
	body, err := parseData(r.data)
	if err != nil {
		return err
	}
	if err := r.repeat.validate(); err != nil {
		return err
	}

	_, profile, err := loadProfile(g)
	if err != nil {
		return err
	}

	c := &call{
		method:   method,
		template: template,
		params:   params,
		body:     body,
		schema:   r.schema,
		extract:  parseExtract(r.extract),
	}
	r.repeat.apply(c)
	s, err := newSession(cmd, g, profile, c)
	if err != nil {
		return err
	}
	return s.run(cmd.Context(), c)
}
