package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/apibase/config"
	"github.com/wesleyorama2/apibase/internal/output"
)

// newValidateCmd builds "validate", which checks a configuration file
// without sending any request.
func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.configPath == "" {
				return fmt.Errorf("config file is required")
			}

			file, err := config.Load(g.configPath)
			if err != nil {
				return err
			}

			noColor := !output.ColorEnabled(cmd.OutOrStdout(), g.noColor)
			errs := config.Validate(file)
			if len(errs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration validation errors:\n", output.ErrorIcon(noColor))
				for _, err := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err.Error())
				}
				return errReported
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid: %d profiles, %d requests\n",
				output.SuccessIcon(noColor), g.configPath, len(file.Profiles), len(file.Requests))
			return nil
		},
	}
}
