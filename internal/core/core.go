package core

import (
	"fmt"
	"os"

	"github.com/denchenko/pa/internal/config"
	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/core/query"
	"github.com/denchenko/pa/internal/log"
	"github.com/denchenko/pa/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	do "github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

var Package = do.Package(
	do.Lazy[*logrus.Logger](NewLogger),
	do.Lazy[*prometheus.Registry](NewRegistry),
	do.Lazy[*metrics.Metrics](NewMetrics),
	do.Lazy[*query.Client](NewQueryClient),
	do.Lazy[*app.App](NewApp),
)

// NewLogger creates the process logger at the configured level.
func NewLogger(i do.Injector) (*logrus.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	logger, err := log.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// NewRegistry creates the prometheus registry every collector is registered with.
func NewRegistry(_ do.Injector) (*prometheus.Registry, error) {
	return prometheus.NewRegistry(), nil
}

func NewMetrics(i do.Injector) (*metrics.Metrics, error) {
	reg := do.MustInvoke[*prometheus.Registry](i)

	return metrics.NewMetrics(reg), nil
}

func NewQueryClient(i do.Injector) (*query.Client, error) {
	m := do.MustInvoke[*metrics.Metrics](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	return query.NewClient(m, logger), nil
}

// NewApp creates a new App instance with dependencies from the injector.
func NewApp(i do.Injector) (*app.App, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repo := do.MustInvoke[app.Repository](i)
	cache := do.MustInvoke[*query.Client](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	return app.NewApp(cfg, repo, cache, m, logger)
}
