package main

import (
	"fmt"
	"os"

	"github.com/denchenko/pa/internal/adapters"
	"github.com/denchenko/pa/internal/config"
	"github.com/denchenko/pa/internal/core"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func main() {
	injector := do.New(
		config.Package,
		core.Package,
		adapters.SecondaryPackage,
		adapters.PrimaryPackage,
	)

	cmd, err := do.Invoke[*cobra.Command](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create CLI command: %v\n", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
