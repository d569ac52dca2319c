package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"

	"github.com/calltrace/callpath/layout"
)

//go:embed assets/viewer.html.tmpl
var viewerTemplate string

type viewerData struct {
	Title      string
	GraphJSON  template.JS
	LayoutJSON template.JS
}

// HTML produces the self-contained visualization document: the interchange
// graph and the precomputed layout geometry embedded in a static shell.
// The shell only draws; every coordinate comes from the layout engine.
func HTML(doc Document, geometry layout.Result, title string) ([]byte, error) {
	graphJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	layoutJSON, err := json.Marshal(geometry)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("viewer").Parse(viewerTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, viewerData{
		Title:      title,
		GraphJSON:  template.JS(graphJSON),
		LayoutJSON: template.JS(layoutJSON),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LayoutGraph converts the interchange document into the layout engine's
// input shape.
func LayoutGraph(doc Document) layout.Graph {
	g := layout.Graph{}
	for _, n := range doc.Nodes {
		g.Nodes = append(g.Nodes, layout.Node{
			ID:       n.ID,
			FilePath: n.FilePath,
			Label:    n.QualifiedName,
			IsSource: n.IsSource,
		})
	}
	for _, e := range doc.Edges {
		g.Edges = append(g.Edges, layout.Edge{From: e.From, To: e.To, Kind: e.Kind})
	}
	return g
}
