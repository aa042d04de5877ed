package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Page is the data an HTML page is rendered from.
type Page struct {
	Title string
	Scene *Scene
	// Socket is the websocket path the page streams frames from and sends
	// pointer events to. Empty renders a static page.
	Socket string
}

// HTMLRenderer renders scenes to HTML pages.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer creates a new HTML renderer.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/scene.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render converts a scene to a static HTML page.
func (r *HTMLRenderer) Render(s *Scene) (string, error) {
	return r.RenderPage(Page{Title: "relmap", Scene: s})
}

// RenderPage renders p.
func (r *HTMLRenderer) RenderPage(p Page) (string, error) {
	if p.Scene == nil {
		p.Scene = EmptyScene(0, 0)
	}
	sceneJSON, err := json.Marshal(p.Scene)
	if err != nil {
		return "", fmt.Errorf("failed to encode scene: %w", err)
	}
	socketJSON, err := json.Marshal(p.Socket)
	if err != nil {
		return "", fmt.Errorf("failed to encode socket path: %w", err)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, map[string]string{
		"Title":     p.Title,
		"SceneData": string(sceneJSON),
		"Socket":    string(socketJSON),
	}); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	return buf.String(), nil
}
