package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/apibase/http"
)

var version = "0.1.0"

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("failure already reported")

// globalFlags holds the flags shared by every request-issuing command.
type globalFlags struct {
	configPath   string
	profile      string
	baseURL      string
	headers      []string
	timeout      time.Duration
	maxRedirects int
	output       string
	verbose      bool
	noColor      bool
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&g.configPath, "config", "c", "", "Configuration file with profiles and named requests")
	fs.StringVarP(&g.profile, "profile", "P", "", "Profile to use from the configuration file")
	fs.StringVarP(&g.baseURL, "base-url", "b", "", "Base URL, overrides the profile")
	fs.StringArrayVarP(&g.headers, "header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	fs.DurationVarP(&g.timeout, "timeout", "t", 0, "Per-request timeout (default 10s)")
	fs.IntVar(&g.maxRedirects, "max-redirects", -1, "Redirects to follow per call (default 5)")
	fs.StringVarP(&g.output, "output", "o", "text", "Output format: text, json or yaml")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
}

// NewRootCmd builds the apibase command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "apibase",
		Short:   "A JSON API client with URI templates, redirects and metrics",
		Version: version,
		Long: `apibase sends JSON requests to HTTP APIs. Paths are RFC 6570 URI
templates expanded from -p parameters, redirects are followed within a
budget, failures are reported by kind, and latency can be summarized or
exported as Prometheus metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(newRequestCmd(flags))
	for _, method := range []http.Method{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodHead,
		http.MethodOptions,
	} {
		root.AddCommand(newMethodCmd(flags, method))
	}
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newValidateCmd(flags))

	return root
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// Execute runs the root command. An interrupt cancels the request in flight,
// which surfaces as an aborted TimeoutError.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(RootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}
