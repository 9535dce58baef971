package adapters

import (
	"fmt"

	"github.com/denchenko/pa/internal/adapters/primary/cli"
	httpadapter "github.com/denchenko/pa/internal/adapters/primary/http"
	"github.com/denchenko/pa/internal/adapters/secondary/api"
	"github.com/denchenko/pa/internal/adapters/secondary/repository/rest"
	"github.com/denchenko/pa/internal/config"
	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/link"
	"github.com/prometheus/client_golang/prometheus"
	do "github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var PrimaryPackage = do.Package(
	do.Lazy[*link.Linker](NewLinker),
	do.Lazy[*cobra.Command](cli.Command),
	do.Lazy[*httpadapter.Server](NewHTTPServer),
)

var SecondaryPackage = do.Package(
	do.Lazy[*api.Client](NewAPIClient),
	do.Lazy[app.Repository](NewRepository),
)

// NewAPIClient creates the remote API client.
func NewAPIClient(i do.Injector) (*api.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	client, err := api.NewClient(api.Options{
		BaseURL:  cfg.BaseURL,
		RetryMax: cfg.RetryMax,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, nil
}

// NewRepository creates a repository adapter that implements app.Repository.
func NewRepository(i do.Injector) (app.Repository, error) {
	client := do.MustInvoke[*api.Client](i)

	return rest.NewRepository(client, api.StatusCode), nil
}

// NewLinker creates the post URL linker from the configured template.
func NewLinker(i do.Injector) (*link.Linker, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return link.NewLinker(cfg.PostURLTemplate)
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(i do.Injector) (*httpadapter.Server, error) {
	appInstance := do.MustInvoke[*app.App](i)
	cfg := do.MustInvoke[*config.Config](i)
	reg := do.MustInvoke[*prometheus.Registry](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	return httpadapter.NewServer(cfg.ListenAddress, appInstance, reg, api.StatusCode, logger), nil
}
