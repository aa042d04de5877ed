package interact

import (
	"time"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Gesture thresholds.
const (
	ClickDistance     = 5.0 // screen pixels a pointer may travel and still click
	DoubleClickWindow = 300 * time.Millisecond
)

// ClickClassifier tells single clicks from double clicks without a native
// double-click event. A click is held pending for the window; any second click
// inside the window cancels it and fires a double click on the node it hit.
// Time is injected so the machine can be driven without a real clock.
type ClickClassifier struct {
	window   time.Duration
	pending  *graph.Node
	at       time.Time
	onClick  func(graph.Node)
	onDouble func(graph.Node)
}

// NewClickClassifier creates a classifier. Either callback may be nil.
func NewClickClassifier(window time.Duration, onClick, onDouble func(graph.Node)) *ClickClassifier {
	if window <= 0 {
		window = DoubleClickWindow
	}
	return &ClickClassifier{window: window, onClick: onClick, onDouble: onDouble}
}

// Click records a qualifying click on node at time at.
func (c *ClickClassifier) Click(node graph.Node, at time.Time) {
	if c.pending != nil {
		if at.Sub(c.at) < c.window {
			c.pending = nil
			if c.onDouble != nil {
				c.onDouble(node)
			}
			return
		}
		// a click after the window settles the earlier one
		c.flush()
	}
	n := node
	c.pending = &n
	c.at = at
}

// Poll fires the pending single click if its window has elapsed by now.
func (c *ClickClassifier) Poll(now time.Time) {
	if c.pending != nil && now.Sub(c.at) >= c.window {
		c.flush()
	}
}

// Deadline returns when the pending click will resolve, if one is pending.
func (c *ClickClassifier) Deadline() (time.Time, bool) {
	if c.pending == nil {
		return time.Time{}, false
	}
	return c.at.Add(c.window), true
}

// Pending reports whether a click is waiting for its window to close.
func (c *ClickClassifier) Pending() bool { return c.pending != nil }

// Reset discards any pending click without firing it.
func (c *ClickClassifier) Reset() { c.pending = nil }

func (c *ClickClassifier) flush() {
	n := c.pending
	c.pending = nil
	if n != nil && c.onClick != nil {
		c.onClick(*n)
	}
}
