package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"clawdia/internal/api"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(load loader) *cobra.Command {
	var (
		addr  string
		quiet bool
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		Long: `Start the HTTP API read by the dashboard UI.

Examples:
  clawdia serve
  clawdia serve --addr :3100 --quiet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(addr) != "" {
				d.cfg.Server.Addr = addr
			}
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := api.NewServer(d.services(), api.Options{
				Prefix:     d.cfg.Server.APIPrefix,
				CORSOrigin: d.cfg.Server.CORSOrigin,
				Quiet:      quiet,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHTTP(ctx, d.cfg.Server.Addr, d.cfg.Server.APIPrefix, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "disable request logging")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}

// runHTTP serves until ctx is done, then drains in-flight requests.
func runHTTP(ctx context.Context, addr, prefix string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("clawdia api listening on http://%s%s", addr, prefix)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Printf("clawdia api stopped")
		return nil
	})
	return g.Wait()
}
