package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ABC-KANG/abc-res-link/lib/consts"
)

// getVersionCmd returns the "version" subcommand, printing the linker's
// own version string (lib/consts) rather than a host toolchain's.
func getVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the linker's version",
		Long:  "Show the linker's version and exit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", consts.Banner, consts.Version)
			return err
		},
	}
}
