package k8s

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// DefaultCluster names the theme when no cluster name is given.
const DefaultCluster = "cluster"

// GraphOptions controls how cluster objects become entities.
type GraphOptions struct {
	// Cluster is the label of the theme every namespace hangs off.
	Cluster string
	// Namespaces to read; empty reads every namespace.
	Namespaces []string
	// Policies adds one topic per network policy that selects a workload.
	Policies bool
}

// Graph reads the cluster and maps it onto entities: the cluster is a
// theme, namespaces are organizations, workloads are initiatives and their
// ports (plus, optionally, selecting network policies) are topics.
func (c *Client) Graph(ctx context.Context, opts GraphOptions) (*graph.Graph, error) {
	namespaces := ParseNamespaces(strings.Join(opts.Namespaces, ","))
	if len(namespaces) == 0 {
		var err error
		namespaces, err = c.GetNamespaces(ctx)
		if err != nil {
			return nil, err
		}
	}

	workloads, err := c.GetWorkloads(ctx, namespaces)
	if err != nil {
		return nil, fmt.Errorf("failed to get workloads: %w", err)
	}

	var policies []networkingv1.NetworkPolicy
	if opts.Policies {
		policies, err = c.GetNetworkPolicies(ctx, namespaces)
		if err != nil {
			return nil, fmt.Errorf("failed to get network policies: %w", err)
		}
	}

	g := ToGraph(opts.Cluster, namespaces, workloads, policies)
	c.logger.Info("read cluster",
		zap.String("cluster", opts.Cluster),
		zap.Int("namespaces", len(namespaces)),
		zap.Int("workloads", len(workloads)),
		zap.Int("policies", len(policies)),
		zap.Int("nodes", len(g.Nodes)),
	)
	return g, nil
}

// ThemeID generates the entity ID of a cluster.
func ThemeID(cluster string) string {
	return "cluster/" + cluster
}

// NamespaceID generates the entity ID of a namespace.
func NamespaceID(namespace string) string {
	return "ns/" + namespace
}

// WorkloadID generates the entity ID of a workload.
func WorkloadID(namespace, name string) string {
	return namespace + "/" + name
}

// PortID generates the entity ID of a workload port.
func PortID(workloadID string, p Port) string {
	return fmt.Sprintf("%s:%s/%d", workloadID, p.Protocol, p.ContainerPort)
}

// PolicyID generates the entity ID of a network policy applied to a workload.
func PolicyID(workloadID, policy string) string {
	return workloadID + "#policy/" + policy
}

// ToGraph maps listed cluster objects onto entities and containment links.
// Namespaces without workloads still appear as organizations.
func ToGraph(cluster string, namespaces []string, workloads []Workload, policies []networkingv1.NetworkPolicy) *graph.Graph {
	if cluster == "" {
		cluster = DefaultCluster
	}
	g := &graph.Graph{Nodes: []graph.Node{}, Links: []graph.Link{}}
	seen := make(map[string]bool)
	addNode := func(n graph.Node) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		g.Nodes = append(g.Nodes, n)
	}
	addLink := func(source, target string, kind graph.LinkKind) {
		g.Links = append(g.Links, graph.Link{Source: source, Target: target, Kind: kind})
	}

	themeID := ThemeID(cluster)
	addNode(graph.Node{ID: themeID, Label: cluster, Type: graph.NodeTypeTheme})

	namespaceSet := make(map[string]bool)
	for _, ns := range namespaces {
		namespaceSet[ns] = true
	}
	for _, w := range workloads {
		namespaceSet[w.Namespace] = true
	}
	sorted := make([]string, 0, len(namespaceSet))
	for ns := range namespaceSet {
		sorted = append(sorted, ns)
	}
	sort.Strings(sorted)
	for _, ns := range sorted {
		addNode(graph.Node{ID: NamespaceID(ns), Label: ns, Type: graph.NodeTypeOrganization})
		addLink(themeID, NamespaceID(ns), graph.LinkKindMain)
	}

	for _, w := range workloads {
		wid := WorkloadID(w.Namespace, w.Name)
		addNode(graph.Node{
			ID:    wid,
			Label: w.Name,
			Type:  graph.NodeTypeInitiative,
			Data: map[string]any{
				"kind":        string(w.Type),
				"namespace":   w.Namespace,
				"description": describe(w),
			},
		})
		addLink(NamespaceID(w.Namespace), wid, graph.LinkKindBranch)

		for _, p := range w.Ports {
			pid := PortID(wid, p)
			label := p.Name
			if label == "" {
				label = fmt.Sprintf("%s/%d", p.Protocol, p.ContainerPort)
			}
			addNode(graph.Node{
				ID:    pid,
				Label: label,
				Type:  graph.NodeTypeTopic,
				Data: map[string]any{
					"port":        p.ContainerPort,
					"protocol":    string(p.Protocol),
					"description": fmt.Sprintf("%s port %d", p.Protocol, p.ContainerPort),
				},
			})
			addLink(wid, pid, graph.LinkKindTopic)
		}

		for _, np := range policies {
			if np.Namespace != w.Namespace || !selects(np, w) {
				continue
			}
			pid := PolicyID(wid, np.Name)
			addNode(graph.Node{
				ID:    pid,
				Label: np.Name,
				Type:  graph.NodeTypeTopic,
				Data: map[string]any{
					"kind":        "NetworkPolicy",
					"description": describePolicy(np),
				},
			})
			addLink(wid, pid, graph.LinkKindTopic)
		}
	}
	return g
}

// selects reports whether np's pod selector matches w's pod labels. An empty
// selector matches every pod in the namespace.
func selects(np networkingv1.NetworkPolicy, w Workload) bool {
	selector, err := metav1.LabelSelectorAsSelector(&np.Spec.PodSelector)
	if err != nil {
		return false
	}
	return selector.Matches(labels.Set(w.Labels))
}

func describe(w Workload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s", w.Type, w.Namespace)
	if len(w.Labels) > 0 {
		keys := make([]string, 0, len(w.Labels))
		for k := range w.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+w.Labels[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(pairs, ", "))
	}
	return b.String()
}

func describePolicy(np networkingv1.NetworkPolicy) string {
	types := make([]string, 0, len(np.Spec.PolicyTypes))
	for _, t := range np.Spec.PolicyTypes {
		types = append(types, string(t))
	}
	if len(types) == 0 {
		types = append(types, string(networkingv1.PolicyTypeIngress))
	}
	return fmt.Sprintf("NetworkPolicy %s (%s)", np.Name, strings.Join(types, ", "))
}
