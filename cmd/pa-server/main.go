package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denchenko/pa/internal/adapters"
	httpadapter "github.com/denchenko/pa/internal/adapters/primary/http"
	"github.com/denchenko/pa/internal/config"
	"github.com/denchenko/pa/internal/core"
	do "github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	injector := do.New(
		config.Package,
		core.Package,
		adapters.SecondaryPackage,
		adapters.PrimaryPackage,
	)

	server, err := do.Invoke[*httpadapter.Server](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create HTTP server: %v\n", err)
		os.Exit(1)
	}

	logger := do.MustInvoke[*logrus.Logger](injector)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
}
