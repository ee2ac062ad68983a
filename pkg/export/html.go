package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	svg "github.com/ajstarks/svgo/float"

	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

type htmlNode struct {
	Shape  string `json:"s"`
	Text   string `json:"t"`
	Branch string `json:"b,omitempty"`
	Parent int    `json:"p"`
	Leaf   bool   `json:"leaf"`
	Info   string `json:"info,omitempty"`
}

type htmlStep struct {
	Shapes   []string `json:"shapes"`
	Texts    []string `json:"texts"`
	Branches []string `json:"branches"`
}

type htmlData struct {
	Options   config.Options `json:"options"`
	Nodes     []htmlNode     `json:"nodes"`
	Steps     []htmlStep     `json:"steps"`
	Generated bool           `json:"generated"`
}

func ids(els []*scene.Element) []string {
	out := make([]string, 0, len(els))
	for _, e := range els {
		out = append(out, e.ID)
	}
	return out
}

func buildHTMLData(sc *scene.Scene) htmlData {
	nodes := sc.Tree.Descendants()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID()] = i
	}

	data := htmlData{Options: sc.Options(), Generated: true}
	for _, n := range nodes {
		hn := htmlNode{
			Shape:  sc.ShapeID(n),
			Text:   sc.TextID(n),
			Branch: sc.BranchID(n),
			Parent: -1,
			Leaf:   n.IsLeaf(),
		}
		if n.Parent != nil {
			hn.Parent = index[n.Parent.ID()]
		}
		if hn.Leaf {
			hn.Info = n.Record.Readable("\n")
		}
		data.Nodes = append(data.Nodes, hn)
	}
	for k := 0; k <= sc.MaxDepthIndex(); k++ {
		data.Steps = append(data.Steps, htmlStep{
			Shapes:   ids(sc.Group(scene.Shape, k)),
			Texts:    ids(sc.Group(scene.Text, k)),
			Branches: ids(sc.Group(scene.Branch, k-1)),
		})
	}
	sc.Each(func(e *scene.Element) {
		if !e.Visible() {
			data.Generated = false
		}
	})
	return data
}

// RenderHTML writes a self-contained page with the SVG scene, the display
// box and a script that runs the reveal and route highlighting in the browser.
func RenderHTML(w io.Writer, sc *scene.Scene, title string) error {
	var body bytes.Buffer
	writeSVG(svg.New(&body), sc, "")

	dataJSON, err := json.Marshal(buildHTMLData(sc))
	if err != nil {
		return fmt.Errorf("marshal scene data: %w", err)
	}
	// Keep "</script>" in payloads from closing the script element.
	safeJSON := strings.ReplaceAll(string(dataJSON), "</", `<\/`)

	_, err = io.WriteString(w, generateRadialHTML(title, sc.Options().DataBoxID, body.String(), safeJSON))
	return err
}

func generateRadialHTML(title, dataBoxID, svgBody, dataJSON string) string {
	safeTitle := html.EscapeString(title)
	safeBox := html.EscapeString(dataBoxID)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { margin: 0; display: flex; font-family: sans-serif; background: #fff; }
        #tree { flex: 1; }
        #tree svg { width: 100%%; height: auto; }
        #%s { width: 320px; padding: 16px; white-space: pre-line; font-size: 13px; border-left: 1px solid #ddd; }
        .link, .node { cursor: pointer; }
    </style>
</head>
<body>
    <div id="tree">
%s
    </div>
    <div id="%s"></div>
    <script>
const D = %s;
const o = D.options;
const m = o.transition_multiplier > 0 ? o.transition_multiplier : 1;
const byEl = {};
D.nodes.forEach((n, i) => { byEl[n.s] = i; byEl[n.t] = i; if (n.b) byEl[n.b] = i; });
let generated = D.generated;
let clicked = false;
const $ = id => document.getElementById(id);

function tween(el, attr, to, ms) {
    if (!el) return;
    const from = parseFloat(el.getAttribute(attr)) || 0;
    if (ms <= 0) { el.setAttribute(attr, to); return; }
    const t0 = performance.now();
    const step = now => {
        const k = Math.min(1, (now - t0) / ms);
        el.setAttribute(attr, from + (to - from) * k);
        if (k < 1) requestAnimationFrame(step);
    };
    requestAnimationFrame(step);
}

function reveal(k) {
    const st = D.steps[k];
    st.shapes.forEach(id => tween($(id), 'r', o.node_radius, 500 / m));
    st.texts.forEach(id => tween($(id), 'opacity', 1, 500 / m));
    st.branches.forEach(id => tween($(id), 'stroke-dashoffset', 0, 2000 / m));
}

function sequence() {
    let k = 0;
    const next = () => setTimeout(() => {
        reveal(k);
        if (k >= D.steps.length - 1) { generated = true; return; }
        k++;
        next();
    }, 1500 / m);
    next();
}

function paintBranch(id, colour, opacity) {
    const el = $(id);
    if (!el) return;
    el.setAttribute('stroke', colour);
    el.setAttribute('opacity', opacity);
}

function paintNode(id, colour, opacity) {
    const el = $(id);
    if (!el) return;
    el.style.fill = colour;
    el.setAttribute('opacity', opacity);
}

function setAll(branchOpacity, nodeOpacity) {
    D.nodes.forEach(n => {
        if (n.b) $(n.b).setAttribute('opacity', branchOpacity);
        $(n.s).setAttribute('opacity', nodeOpacity);
        $(n.t).setAttribute('opacity', nodeOpacity);
    });
}

function route(i, type) {
    if (!generated) return;
    let branchColour = o.branch_colour, nodeColour = o.node_colour;
    let branchOpacity = o.branch_opacity, nodeOpacity = o.node_opacity;
    switch (type) {
    case 'enter':
        branchColour = o.branch_colour_on_hover;
        nodeColour = o.node_colour_on_hover;
        branchOpacity = 1;
        nodeOpacity = 1;
        break;
    case 'leave':
        if (clicked) {
            branchOpacity = o.tree_opacity_on_click;
            nodeOpacity = o.tree_opacity_on_click;
        }
        break;
    case 'click':
        if (clicked) {
            setAll(o.branch_opacity, o.node_opacity);
        } else {
            setAll(o.tree_opacity_on_click, o.tree_opacity_on_click);
        }
        branchColour = o.branch_colour_on_hover;
        nodeColour = o.node_colour_on_hover;
        clicked = !clicked;
        break;
    }
    for (let x = i; x >= 0; x = D.nodes[x].p) {
        const n = D.nodes[x];
        if (n.b) paintBranch(n.b, branchColour, branchOpacity);
        paintNode(n.s, nodeColour, nodeOpacity);
        paintNode(n.t, nodeColour, nodeOpacity);
    }
}

function show(i) {
    const box = $(o.data_box_id);
    if (box) box.textContent = D.nodes[i].info;
}

document.querySelectorAll('#links path, #nodes circle, #labels text').forEach(el => {
    const i = byEl[el.id];
    if (i === undefined) return;
    const isLink = el.tagName.toLowerCase() === 'path';
    el.addEventListener('mouseover', () => {
        if (!isLink && D.nodes[i].leaf) show(i);
        route(i, 'enter');
    });
    el.addEventListener('mouseout', () => route(i, 'leave'));
    if (!isLink) el.addEventListener('click', () => route(i, 'click'));
});

if (!generated) sequence();
    </script>
</body>
</html>
`, safeTitle, safeBox, svgBody, safeBox, dataJSON)
}
