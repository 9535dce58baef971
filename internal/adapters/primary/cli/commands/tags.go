package commands

import (
	"fmt"

	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/format/ascii"
	"github.com/denchenko/pa/internal/log"
	"github.com/spf13/cobra"
)

func Tags(appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every post tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tags []domain.Tag
			err := log.WithSpinner("Loading tags...", func() error {
				var err error
				tags, err = appInstance.Tags(cmd.Context())

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to load tags: %w", err)
			}

			out, err := ascii.FormatTags(tags)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}
}
