package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

func loadedBubbleSession(t *testing.T, opts Options) *bubbleSession {
	t.Helper()
	srv := newTestServer(t, opts)
	s := newBubbleSession(srv, false, zap.NewNop())
	s.load(srv.Graph())
	return s
}

func TestBubbleSessionFrames(t *testing.T) {
	s := loadedBubbleSession(t, testOptions())

	frames := s.frames()
	require.Len(t, frames, 1)
	scene := frames[0].Scene
	require.NotNil(t, scene)
	circleOf(t, scene, "i")
	_, ok := scene.Circle("p")
	assert.False(t, ok, "topics need detail")
	assert.Equal(t, "translate(0,0) scale(1)", scene.Transform)
	assert.Empty(t, scene.Banner)

	assert.False(t, s.tick(time.Unix(0, 0)), "the pack never moves on its own")
	assert.Empty(t, s.frames())
}

func TestBubbleSessionEmptyGraph(t *testing.T) {
	srv := newTestServer(t, testOptions())
	srv.SetGraph(&graph.Graph{})
	s := newBubbleSession(srv, false, zap.NewNop())
	s.load(srv.Graph())

	assert.Nil(t, s.pass.layout, "nothing to pack")
	frames := s.frames()
	require.Len(t, frames, 1)
	scene := frames[0].Scene
	require.NotNil(t, scene)
	assert.True(t, scene.Empty)
	assert.Equal(t, 1200.0, scene.Width)
	assert.Empty(t, scene.Circles)
}

func TestBubbleSessionTruncated(t *testing.T) {
	opts := testOptions()
	opts.MaxNodes = 2
	s := loadedBubbleSession(t, opts)

	frames := s.frames()
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].Scene.Banner, "Showing 2 of 4 nodes")
}

func TestBubbleSessionHandle(t *testing.T) {
	t0 := time.Unix(0, 0)

	tests := map[string]struct {
		messages  []Message
		wantDirty bool
		wantKinds []string
		check     func(t *testing.T, s *bubbleSession)
	}{
		"hover scales the bubble": {
			messages:  []Message{{Type: MessageEnter, ID: "o"}},
			wantDirty: true,
			check: func(t *testing.T, s *bubbleSession) {
				assert.Equal(t, 1.1, circleOf(t, s.scene(), "o").Scale)
			},
		},
		"press and release clicks": {
			messages: []Message{
				{Type: MessageDown, ID: "i", X: 100, Y: 100},
				{Type: MessageUp, X: 102, Y: 100},
			},
			wantKinds: []string{EventClick},
		},
		"press released far away is not a click": {
			messages: []Message{
				{Type: MessageDown, ID: "i", X: 100, Y: 100},
				{Type: MessageUp, X: 140, Y: 100},
			},
		},
		"release without a press": {
			messages: []Message{{Type: MessageUp, X: 100, Y: 100}},
		},
		"press on an unknown node": {
			messages: []Message{
				{Type: MessageDown, ID: "nope", X: 100, Y: 100},
				{Type: MessageUp, X: 100, Y: 100},
			},
		},
		"zoom keeps the focal point": {
			messages:  []Message{{Type: MessageZoom, Factor: 2, X: 120, Y: 80}},
			wantDirty: true,
			check: func(t *testing.T, s *bubbleSession) {
				assert.Equal(t, "translate(-120,-80) scale(2)", s.scene().Transform)
			},
		},
		"highlight": {
			messages:  []Message{{Type: MessageHighlight, ID: "t"}},
			wantDirty: true,
			check: func(t *testing.T, s *bubbleSession) {
				assert.Equal(t, "#FF6B00", circleOf(t, s.scene(), "t").Stroke)
			},
		},
		"move is ignored": {
			messages: []Message{{Type: MessageMove, X: 5, Y: 5}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := loadedBubbleSession(t, testOptions())
			s.frames()

			for _, m := range tt.messages {
				s.handle(m, t0)
			}
			assert.Equal(t, tt.wantDirty, s.marks.dirty)
			if tt.check != nil {
				tt.check(t, s)
			}

			s.tick(t0.Add(time.Second))
			var kinds []string
			for _, f := range s.frames() {
				if f.Event != nil {
					assert.Equal(t, "i", f.Event.Node.ID)
					kinds = append(kinds, f.Event.Kind)
				}
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestBubbleSessionDoubleClick(t *testing.T) {
	s := loadedBubbleSession(t, testOptions())
	s.frames()
	t0 := time.Unix(0, 0)

	for _, at := range []time.Time{t0, t0.Add(120 * time.Millisecond)} {
		s.handle(Message{Type: MessageDown, ID: "o", X: 50, Y: 50}, at)
		s.handle(Message{Type: MessageUp, X: 50, Y: 50}, at)
	}
	s.tick(t0.Add(time.Second))

	frames := s.frames()
	require.Len(t, frames, 1)
	require.NotNil(t, frames[0].Event)
	assert.Equal(t, EventDoubleClick, frames[0].Event.Kind)
	assert.Equal(t, graph.NodeTypeOrganization, frames[0].Event.Node.Type)
}

func TestBubbleSocketDeliversClicks(t *testing.T) {
	s := newTestServer(t, testOptions())
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/bubble?detail=true", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Frame
	require.NoError(t, conn.ReadJSON(&first))
	require.NotNil(t, first.Scene)
	circleOf(t, first.Scene, "p")

	require.NoError(t, conn.WriteJSON(Message{Type: MessageDown, ID: "p", X: 10, Y: 10}))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageUp, X: 10, Y: 10}))

	for {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Event != nil {
			assert.Equal(t, EventClick, f.Event.Kind)
			assert.Equal(t, "p", f.Event.Node.ID)
			return
		}
	}
}
