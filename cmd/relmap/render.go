package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ddl-r-abdulaziz/relmap/pkg/render"
)

const (
	defaultBubbleOutput = "relmap-bubble.svg"
	defaultForceOutput  = "relmap-force.svg"
)

// viewFlags are the purely visual options of a static render.
type viewFlags struct {
	output    string
	hover     string
	highlight string
	relation  string
}

func (f *viewFlags) register(cmd *cobra.Command, defaultOutput string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", defaultOutput, "output file (.svg or .html; - for stdout SVG)")
	cmd.Flags().StringVar(&f.hover, "hover", "", "draw this node id as hovered")
	cmd.Flags().StringVar(&f.highlight, "highlight", "", "emphasize this node id")
	cmd.Flags().StringVar(&f.relation, "relation", "", "emphasize this relation (source->target)")
}

func (f *viewFlags) options() render.Options {
	return render.Options{
		Hovered:             f.hover,
		HighlightedEntity:   f.highlight,
		HighlightedRelation: f.relation,
	}
}

func newBubbleCmd(a *app) *cobra.Command {
	flags := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "bubble",
		Short: "Render the nested bubble view",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.newServer(cmd.Context())
			if err != nil {
				return err
			}
			scene := srv.BubbleScene(cmd.Context(), a.cfg.ShowDetail, flags.options())
			return writeScene(scene, flags.output)
		},
	}
	flags.register(cmd, defaultBubbleOutput)
	return cmd
}

func newForceCmd(a *app) *cobra.Command {
	flags := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "force",
		Short: "Render the settled force-directed view",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.newServer(cmd.Context())
			if err != nil {
				return err
			}
			scene := srv.ForceScene(cmd.Context(), flags.options())
			return writeScene(scene, flags.output)
		},
	}
	flags.register(cmd, defaultForceOutput)
	return cmd
}

// writeScene writes s to path as HTML when the extension says so, SVG otherwise.
func writeScene(s *render.Scene, path string) error {
	if s.Banner != "" {
		warn.Fprintf(os.Stderr, "Warning: %s\n", s.Banner)
	}

	if path == "-" {
		return render.WriteSVG(os.Stdout, s)
	}

	var write func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		renderer, err := render.NewHTMLRenderer()
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		page, err := renderer.Render(s)
		if err != nil {
			return fmt.Errorf("failed to render page: %w", err)
		}
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, page)
			return err
		}
	default:
		write = func(w io.Writer) error { return render.WriteSVG(w, s) }
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	good.Printf("Map written to: %s\n", path)
	return nil
}
