package cli

import (
	"github.com/denchenko/pa/internal/adapters/primary/cli/commands"
	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/link"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Command creates and returns the root CLI command.
func Command(i do.Injector) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "pa",
		Long:          `A CLI tool for administering posts, comments and users.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	appInstance := do.MustInvoke[*app.App](i)
	linker := do.MustInvoke[*link.Linker](i)

	cmd.AddCommand(
		commands.Posts(appInstance, linker),
		commands.Comments(appInstance),
		commands.Tags(appInstance),
		commands.Users(appInstance),
	)

	return cmd, nil
}
