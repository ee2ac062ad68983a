package export

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/record"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

// jsonNode is one node of the JSON tree export.
type jsonNode struct {
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Row      int               `json:"row"`
	Depth    int               `json:"depth"`
	Angle    float64           `json:"angle"`
	Radius   float64           `json:"radius"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Shape    string            `json:"shape_id"`
	Text     string            `json:"text_id"`
	Branch   string            `json:"branch_id,omitempty"`
	Payload  map[string]string `json:"payload,omitempty"`
	Children []*jsonNode       `json:"children,omitempty"`
}

type jsonDocument struct {
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	OriginX  float64   `json:"origin_x"`
	OriginY  float64   `json:"origin_y"`
	MaxDepth int       `json:"max_depth"`
	Nodes    int       `json:"node_count"`
	Root     *jsonNode `json:"root"`
}

// payloadMap zips a record's payload with the header labels.
func payloadMap(r record.Record) map[string]string {
	fields := r.Fields()
	if fields == nil {
		return nil
	}
	m := make(map[string]string, len(record.Headers))
	for i, h := range record.Headers {
		if i < len(fields) {
			m[h] = fields[i]
		} else {
			m[h] = ""
		}
	}
	return m
}

func buildJSONNode(sc *scene.Scene, n *hierarchy.Node) *jsonNode {
	shape := sc.Select(sc.ShapeID(n))
	jn := &jsonNode{
		Name:    n.Record.Name(),
		Path:    n.ID(),
		Row:     n.Row(),
		Depth:   n.Depth,
		Angle:   n.X,
		Radius:  n.Y,
		X:       shape.Pos.X,
		Y:       shape.Pos.Y,
		Shape:   shape.ID,
		Text:    sc.TextID(n),
		Branch:  sc.BranchID(n),
		Payload: payloadMap(n.Record),
	}
	for _, c := range n.Children {
		jn.Children = append(jn.Children, buildJSONNode(sc, c))
	}
	return jn
}

// RenderJSON writes the laid-out tree as nested JSON.
func RenderJSON(w io.Writer, sc *scene.Scene) error {
	doc := jsonDocument{
		Width:    sc.Width,
		Height:   sc.Height,
		OriginX:  sc.Origin.X,
		OriginY:  sc.Origin.Y,
		MaxDepth: sc.Tree.MaxDepth,
		Nodes:    sc.Tree.Len(),
		Root:     buildJSONNode(sc, sc.Tree.Root),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
