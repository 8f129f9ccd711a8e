package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendwise-dev/spendwise/internal/api"
	"github.com/spendwise-dev/spendwise/internal/categories"
	"github.com/spendwise-dev/spendwise/internal/categorize"
	"github.com/spendwise-dev/spendwise/internal/importer"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(dir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.ErrOrStderr(), *dir, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")

	return cmd
}

func runServe(ctx context.Context, logOut io.Writer, dir, addr string) error {
	p, err := openProject(dir, logOut)
	if err != nil {
		return err
	}
	if addr != "" {
		p.cfg.Server.Address = addr
	}

	st, closeDB, err := p.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	seeds, err := categories.LoadSeeds(p.dir)
	if err != nil {
		return err
	}
	res, err := categories.Bootstrap(ctx, st, seeds)
	if err != nil {
		return fmt.Errorf("bootstrapping categories: %w", err)
	}
	p.log.Info().Int("created", res.Created).Int("updated", res.Updated).Msg("categories ready")

	rules, err := p.rules()
	if err != nil {
		return err
	}
	imp := importer.NewService(st, categorize.NewEngine(rules, st), p.log)
	router := api.NewRouter(p.cfg.Server, api.NewHandler(st, imp, p.log))

	server := &http.Server{
		Addr:         p.cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		p.log.Info().Str("addr", server.Addr).Msg("starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	p.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
