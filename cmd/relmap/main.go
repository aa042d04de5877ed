// Package main provides the entry point for the relmap CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/client-go/util/homedir"

	"github.com/ddl-r-abdulaziz/relmap/pkg/config"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/k8s"
	"github.com/ddl-r-abdulaziz/relmap/pkg/logging"
	"github.com/ddl-r-abdulaziz/relmap/pkg/server"
)

var version = "dev"

var (
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	subtle = color.New(color.FgHiBlack)
)

// app is what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "relmap",
		Short: "relmap - relationship map layouts",
		Long: "Lays out themes, organizations, initiatives and topics as nested bubbles\n" +
			"or as a force-directed graph, from a YAML/JSON file or a Kubernetes cluster.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (YAML or TOML)")
	pf.Float64("width", 0, "drawing surface width")
	pf.Float64("height", 0, "drawing surface height")
	pf.Int("max-nodes", 0, "maximum nodes per layout pass (0 or negative is unlimited)")
	pf.Bool("detail", false, "include topics in the bubble view")
	pf.Bool("unrooted", false, "collect entities unreachable from any theme under an 'Unrooted' theme")
	pf.StringP("input", "i", "", "graph file (YAML or JSON); empty reads the cluster")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (console, json)")
	pf.String("kubeconfig", "", "path to the kubeconfig file (default ~/.kube/config, then in-cluster)")
	pf.String("cluster", "", "cluster name shown as the theme")
	pf.String("namespaces", "", "comma-separated list of namespaces to scan (default all)")
	pf.Bool("policies", false, "add network policies selecting a workload as topics")

	cmd.AddCommand(
		newBubbleCmd(a),
		newForceCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) serverOptions() server.Options {
	return server.Options{
		Width:          a.cfg.Width,
		Height:         a.cfg.Height,
		MaxNodes:       a.cfg.MaxNodes,
		ShowDetail:     a.cfg.ShowDetail,
		UnrootedBucket: a.cfg.UnrootedBucket,
		FrameInterval:  a.cfg.Server.FrameInterval(),
	}
}

// loadGraph reads the configured input file, or the cluster when no file is set.
func (a *app) loadGraph(ctx context.Context) (*graph.Graph, error) {
	if a.cfg.Input != "" {
		g, err := graph.LoadFile(a.cfg.Input)
		if err != nil {
			return nil, err
		}
		a.logger.Info("read graph file",
			zap.String("path", a.cfg.Input),
			zap.Int("nodes", len(g.Nodes)),
			zap.Int("links", len(g.Links)),
		)
		return g, nil
	}

	client, err := k8s.NewClient(a.kubeconfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	subtle.Fprintf(os.Stderr, "Scanning namespaces: %v\n", a.cfg.Kube.Namespaces)
	return client.WithLogger(a.logger).Graph(ctx, k8s.GraphOptions{
		Cluster:    a.cfg.Kube.Cluster,
		Namespaces: a.cfg.Kube.Namespaces,
		Policies:   a.cfg.Kube.Policies,
	})
}

func (a *app) kubeconfig() string {
	if a.cfg.Kube.Config != "" {
		return a.cfg.Kube.Config
	}
	if home := homedir.HomeDir(); home != "" {
		path := filepath.Join(home, ".kube", "config")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (a *app) newServer(ctx context.Context) (*server.Server, error) {
	g, err := a.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	srv, err := server.New(a.serverOptions(), a.logger)
	if err != nil {
		return nil, err
	}
	srv.SetGraph(g)
	if len(srv.Graph().Nodes) == 0 {
		warn.Fprintln(os.Stderr, "Warning: the graph has no nodes; views show an empty state")
	}
	return srv, nil
}
