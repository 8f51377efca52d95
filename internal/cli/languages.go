package cli

import (
	"fmt"

	"github.com/fmueller/wavscribe/internal/language"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List the language codes accepted by convert",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), language.RenderTable())
			return nil
		},
	}
}
