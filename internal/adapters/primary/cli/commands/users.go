package commands

import (
	"fmt"

	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/format/ascii"
	"github.com/denchenko/pa/internal/log"
	"github.com/spf13/cobra"
)

func Users(appInstance *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Everything related to users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}

			appInstance.State().Selection.SelectUser(id)

			var user domain.User
			err = log.WithSpinner("Loading user...", func() error {
				var err error
				user, err = appInstance.User(cmd.Context(), id)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			out, err := ascii.FormatUser(user)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	})

	return cmd
}
