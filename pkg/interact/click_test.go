package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

type clickLog struct {
	single []string
	double []string
}

func (l *clickLog) classifier() *ClickClassifier {
	return NewClickClassifier(DoubleClickWindow,
		func(n graph.Node) { l.single = append(l.single, n.ID) },
		func(n graph.Node) { l.double = append(l.double, n.ID) },
	)
}

func TestClickClassifier(t *testing.T) {
	t0 := time.Unix(1000, 0)
	a := graph.Node{ID: "a"}
	b := graph.Node{ID: "b"}
	ms := func(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

	type click struct {
		node graph.Node
		at   time.Time
	}
	tests := map[string]struct {
		clicks []click
		pollAt time.Time
		single []string
		double []string
	}{
		"single click fires after the window": {
			clicks: []click{{a, ms(0)}},
			pollAt: ms(300),
			single: []string{"a"},
		},
		"single click still pending inside the window": {
			clicks: []click{{a, ms(0)}},
			pollAt: ms(299),
		},
		"two clicks inside the window are one double click": {
			clicks: []click{{a, ms(0)}, {a, ms(250)}},
			pollAt: ms(1000),
			double: []string{"a"},
		},
		"two clicks just outside the window are two clicks": {
			clicks: []click{{a, ms(0)}, {a, ms(300)}},
			pollAt: ms(1000),
			single: []string{"a", "a"},
		},
		"second click on another node inside the window is a double click": {
			clicks: []click{{a, ms(0)}, {b, ms(100)}},
			pollAt: ms(1000),
			double: []string{"b"},
		},
		"clicks on different nodes outside the window stay single": {
			clicks: []click{{a, ms(0)}, {b, ms(400)}},
			pollAt: ms(1000),
			single: []string{"a", "b"},
		},
		"third click starts a new gesture": {
			clicks: []click{{a, ms(0)}, {a, ms(100)}, {a, ms(200)}},
			pollAt: ms(1000),
			single: []string{"a"},
			double: []string{"a"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var log clickLog
			c := log.classifier()
			for _, cl := range tt.clicks {
				c.Click(cl.node, cl.at)
			}
			c.Poll(tt.pollAt)
			assert.Equal(t, tt.single, log.single)
			assert.Equal(t, tt.double, log.double)
		})
	}
}

func TestClickClassifierDeadline(t *testing.T) {
	var log clickLog
	c := log.classifier()
	t0 := time.Unix(0, 0)

	_, ok := c.Deadline()
	assert.False(t, ok)

	c.Click(graph.Node{ID: "a"}, t0)
	deadline, ok := c.Deadline()
	assert.True(t, ok)
	assert.Equal(t, t0.Add(DoubleClickWindow), deadline)
	assert.True(t, c.Pending())

	c.Reset()
	c.Poll(t0.Add(time.Hour))
	assert.False(t, c.Pending())
	assert.Empty(t, log.single)
}
