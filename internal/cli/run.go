package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/apibase/config"
	"github.com/wesleyorama2/apibase/http"
)

// newRunCmd builds "run NAME", which sends a request defined in the
// configuration file.
func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		list   bool
		repeat repeatFlags
	)

	cmd := &cobra.Command{
		Use:   "run [NAME]",
		Short: "Run a named request from a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.configPath == "" {
				return fmt.Errorf("config file is required")
			}

			file, profile, err := loadProfile(g)
			if err != nil {
				return err
			}

			if list || len(args) == 0 {
				for _, name := range file.RequestNames() {
					req := file.Requests[name]
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\n", name, req.Method, req.Path)
				}
				return nil
			}
			if err := repeat.validate(); err != nil {
				return err
			}

			req, err := file.Request(args[0])
			if err != nil {
				return err
			}
			c, err := namedCall(file, req.Resolve(profile.Vars))
			if err != nil {
				return fmt.Errorf("request %s: %w", args[0], err)
			}
			repeat.apply(c)

			s, err := newSession(cmd, g, profile, c)
			if err != nil {
				return err
			}
			return s.run(cmd.Context(), c)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the requests defined in the configuration file")
	repeat.register(cmd.Flags())
	return cmd
}

// namedCall converts a resolved configuration request into a call.
func namedCall(file *config.File, req config.Request) (*call, error) {
	method, err := http.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	c := &call{
		method:   method,
		template: req.Path,
		params:   http.Params(req.Params),
		body:     req.Body,
		headers:  req.Headers,
		schema:   file.SchemaPath(req),
		extract:  req.Extract,
	}
	if req.Timeout != "" {
		if c.timeout, err = config.ParseDurationString(req.Timeout); err != nil {
			return nil, fmt.Errorf("invalid timeout '%s': %w", req.Timeout, err)
		}
	}
	return c, nil
}
