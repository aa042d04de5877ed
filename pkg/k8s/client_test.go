package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

func TestParseNamespaces(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected []string
	}{
		"single namespace": {
			input:    "default",
			expected: []string{"default"},
		},
		"two namespaces": {
			input:    "domino-compute,domino-platform",
			expected: []string{"domino-compute", "domino-platform"},
		},
		"namespaces with spaces": {
			input:    " ns1 , ns2 , ns3 ",
			expected: []string{"ns1", "ns2", "ns3"},
		},
		"empty string": {
			input:    "",
			expected: []string{},
		},
		"only commas": {
			input:    ",,",
			expected: []string{},
		},
		"mixed empty and valid": {
			input:    "ns1,,ns2",
			expected: []string{"ns1", "ns2"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := ParseNamespaces(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("expected %d namespaces, got %d", len(tt.expected), len(result))
				return
			}
			for i, ns := range result {
				if ns != tt.expected[i] {
					t.Errorf("expected namespace[%d] = %q, got %q", i, tt.expected[i], ns)
				}
			}
		})
	}
}

func testObjects() []runtime.Object {
	web := appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "shop"},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"app": "web"}},
				Spec: corev1.PodSpec{Containers: []corev1.Container{{
					Name: "web",
					Ports: []corev1.ContainerPort{
						{Name: "http", ContainerPort: 8080},
						{ContainerPort: 9090, Protocol: corev1.ProtocolUDP},
					},
				}}},
			},
		},
	}
	db := appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "shop"},
		Spec: appsv1.StatefulSetSpec{
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"app": "db"}},
			},
		},
	}
	agent := appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: "agent", Namespace: "ops"},
	}
	policy := networkingv1.NetworkPolicy{
		ObjectMeta: metav1.ObjectMeta{Name: "allow-web", Namespace: "shop"},
		Spec: networkingv1.NetworkPolicySpec{
			PodSelector: metav1.LabelSelector{MatchLabels: map[string]string{"app": "web"}},
			PolicyTypes: []networkingv1.PolicyType{networkingv1.PolicyTypeIngress},
		},
	}
	debug := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "debug", Namespace: "ops"},
	}
	owned := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:            "web-7d4f",
			Namespace:       "shop",
			OwnerReferences: []metav1.OwnerReference{{Kind: "ReplicaSet", Name: "web-7d4f"}},
		},
	}
	return []runtime.Object{
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "shop"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ops"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "empty"}},
		&web, &db, &agent, &policy, &debug, &owned,
	}
}

func TestClientGetWorkloads(t *testing.T) {
	client := NewClientWithInterface(fake.NewSimpleClientset(testObjects()...))

	workloads, err := client.GetWorkloads(context.Background(), []string{"shop"})
	require.NoError(t, err)
	require.Len(t, workloads, 2)

	byName := map[string]Workload{}
	for _, w := range workloads {
		byName[w.Name] = w
	}
	assert.Equal(t, WorkloadTypeDeployment, byName["web"].Type)
	assert.Equal(t, WorkloadTypeStatefulSet, byName["db"].Type)
	assert.Equal(t, []Port{
		{Name: "http", ContainerPort: 8080, Protocol: corev1.ProtocolTCP},
		{ContainerPort: 9090, Protocol: corev1.ProtocolUDP},
	}, byName["web"].Ports)
}

func TestClientGraph(t *testing.T) {
	tests := map[string]struct {
		opts        GraphOptions
		expectNodes []string
		rejectNodes []string
	}{
		"all namespaces": {
			opts: GraphOptions{Cluster: "prod"},
			expectNodes: []string{
				"cluster/prod", "ns/shop", "ns/ops", "ns/empty",
				"shop/web", "shop/db", "ops/agent", "ops/debug",
				"shop/web:TCP/8080", "shop/web:UDP/9090",
			},
			rejectNodes: []string{"shop/web#policy/allow-web"},
		},
		"selected namespace": {
			opts:        GraphOptions{Namespaces: []string{"ops"}},
			expectNodes: []string{"cluster/cluster", "ns/ops", "ops/agent"},
			rejectNodes: []string{"ns/shop", "shop/web"},
		},
		"with policies": {
			opts:        GraphOptions{Cluster: "prod", Namespaces: []string{"shop"}, Policies: true},
			expectNodes: []string{"shop/web#policy/allow-web"},
			rejectNodes: []string{"shop/db#policy/allow-web"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client := NewClientWithInterface(fake.NewSimpleClientset(testObjects()...))
			g, err := client.Graph(context.Background(), tt.opts)
			require.NoError(t, err)

			index := graph.IndexByID(g.Nodes)
			for _, id := range tt.expectNodes {
				assert.Contains(t, index, id)
			}
			for _, id := range tt.rejectNodes {
				assert.NotContains(t, index, id)
			}
			kept, dropped := graph.FilterLinks(g.Nodes, g.Links, nil)
			assert.Zero(t, dropped)
			assert.Len(t, kept, len(g.Links))
		})
	}
}

func TestToGraphBuildsHierarchy(t *testing.T) {
	workloads := []Workload{
		{Name: "web", Namespace: "shop", Type: WorkloadTypeDeployment, Ports: []Port{{Name: "http", ContainerPort: 80, Protocol: corev1.ProtocolTCP}}},
		{Name: "db", Namespace: "shop", Type: WorkloadTypeStatefulSet},
	}
	g := ToGraph("", nil, workloads, nil)

	h := graph.NewBuilder().Build(g.Nodes, g.Links, true)
	require.Len(t, h.Root.Children, 1)
	theme := h.Root.Children[0]
	assert.Equal(t, DefaultCluster, theme.Name)
	require.Len(t, theme.Children, 1)
	assert.Equal(t, "shop", theme.Children[0].Name)
	assert.Equal(t, 2.0, theme.Weight, "one port leaf plus one childless workload")
	assert.Empty(t, h.Orphans)
}

func TestDescribe(t *testing.T) {
	w := Workload{Name: "web", Namespace: "shop", Type: WorkloadTypeDeployment, Labels: map[string]string{"tier": "front", "app": "web"}}
	if got, want := describe(w), "Deployment in shop (app=web, tier=front)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
