package cli

import (
	"fmt"

	"github.com/fmueller/wavscribe/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "wavscribe v%s (commit %s, built %s)\n", version.Resolve(), version.Commit, version.Date)
			return nil
		},
	}
}
