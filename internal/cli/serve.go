package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"lmsbridge/internal/httpapi"
	"lmsbridge/internal/service"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST facade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				g.cfg.Addr = addr
			}
			return serve(cmd.Context(), g)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8089")
	return cmd
}

// newHandler wires the facade, the services and the HTTP layer from g.cfg.
func newHandler(g *globals) http.Handler {
	cfg := g.cfg
	hub := httpapi.NewEventHub()
	set := service.NewSet(newBackend(cfg, g.log, hub))

	httpapi.SetLogger(g.log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	// One facade call may spend its HTTP budget and then its CLI budget.
	httpapi.SetCallTimeout(time.Duration(cfg.HTTP.TimeoutSeconds+cfg.CLI.TimeoutSeconds) * time.Second)

	return httpapi.NewMux(httpapi.Services{
		Models:   set.Models,
		Config:   set.Config,
		Status:   set.Status,
		Training: set.Training,
		Events:   hub,
	})
}

// serve runs until ctx is canceled, then shuts down gracefully.
func serve(ctx context.Context, g *globals) error {
	base, cancel := context.WithCancel(ctx)
	defer cancel()
	httpapi.SetBaseContext(base)

	srv := &http.Server{
		Addr:              g.cfg.Addr,
		Handler:           newHandler(g),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		g.log.Info().Str("addr", g.cfg.Addr).Str("lmstudio", g.cfg.HTTP.BaseURL).Str("lms", g.cfg.CLI.Bin).Msg("lmsbridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	g.log.Info().Msg("shutting down")
	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		g.log.Warn().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}
