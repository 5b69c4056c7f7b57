package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/contentdesk/internal/web"
)

func newServeCmd(s *session) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			catalog, release, err := s.catalog()
			if err != nil {
				return err
			}
			defer release()

			srv := web.New(catalog, s.log, web.Options{
				ReadTimeout:  s.cfg.Server.ReadTimeout,
				WriteTimeout: s.cfg.Server.WriteTimeout,
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Listen(addr) })
			g.Go(func() error {
				<-gctx.Done()
				s.log.Info("shutting down server")
				return srv.Shutdown(s.cfg.Server.ShutdownTimeout)
			})
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return sysError(err)
			}
			s.log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr from config)")
	return cmd
}
