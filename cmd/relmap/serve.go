package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive views over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), watch)
		},
	}
	cmd.Flags().StringP("addr", "a", "", "listen address (default :8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the input file when it changes")
	return cmd
}

func (a *app) serve(ctx context.Context, watch bool) error {
	srv, err := a.newServer(ctx)
	if err != nil {
		return err
	}

	var w *server.Watcher
	if watch && a.cfg.Input != "" {
		w, err = server.NewWatcher(a.cfg.Input, 0, func(path string) {
			next, err := graph.LoadFile(path)
			if err != nil {
				// keep serving the last good graph
				a.logger.Warn("failed to reload graph", zap.Error(err))
				return
			}
			srv.SetGraph(next)
		}, a.logger)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, a.cfg.Server.Addr)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	good.Printf("Serving on %s\n", a.cfg.Server.Addr)
	return g.Wait()
}
