package graph

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// FilterLinks returns the links whose endpoints both exist in nodes. Dangling
// links are dropped and logged; upstream data may be transiently inconsistent
// so this is never an error.
func FilterLinks(nodes []Node, links []Link, logger *zap.Logger) ([]Link, int) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := IndexByID(nodes)

	kept := make([]Link, 0, len(links))
	dropped := 0
	for _, l := range links {
		_, sourceOK := index[l.Source]
		_, targetOK := index[l.Target]
		if !sourceOK || !targetOK {
			dropped++
			logger.Debug("dropping dangling link",
				zap.String("link", LinkID(l.Source, l.Target)),
				zap.Bool("sourceExists", sourceOK),
				zap.Bool("targetExists", targetOK),
				zap.String("kind", string(l.Kind.OrDefault())),
			)
			continue
		}
		l.Kind = l.Kind.OrDefault()
		kept = append(kept, l)
	}

	if dropped > 0 {
		logger.Warn("dropped links referencing missing nodes",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(kept)),
		)
	}
	return kept, dropped
}

// UniqueNodes removes repeated node IDs, keeping the first occurrence.
func UniqueNodes(nodes []Node, logger *zap.Logger) []Node {
	if logger == nil {
		logger = zap.NewNop()
	}
	seen := make(map[string]bool, len(nodes))
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			logger.Warn("ignoring duplicate node id", zap.String("id", n.ID))
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// LoadFile reads a graph from a YAML or JSON file.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a graph from YAML or JSON bytes.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	for i, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
	}
	return &g, nil
}
