package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/partree/pkg/core/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's depth to its label.
	Detailed bool
}

// ToDOT converts an expression tree to Graphviz DOT source. A nil tree
// yields an empty digraph.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[*tree.Node]string)
	var edges []string
	tree.Walk(root, func(n *tree.Node, depth int) bool {
		id := "n" + strconv.Itoa(len(ids))
		ids[n] = id
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, depth, opts.Detailed), ", "))
		return true
	})
	tree.Walk(root, func(n *tree.Node, _ int) bool {
		for _, c := range []*tree.Node{n.Left, n.Right} {
			if c != nil {
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", ids[n], ids[c]))
			}
		}
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, depth int, detailed bool) string {
	if !detailed {
		return n.Data
	}
	return fmt.Sprintf("%s\ndepth: %d", n.Data, depth)
}

func fmtAttrs(n *tree.Node, depth int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, depth, detailed))}
	if !n.IsLeaf() {
		attrs = append(attrs, "shape=circle", "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
	attrRe    = regexp.MustCompile(`\s(viewBox|width|height)="[^"]*"`)
)

// normalizeViewBox rewrites the root svg tag so the viewBox starts at the
// origin and explicit pixel dimensions match it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}

	return svgTagRe.ReplaceAllFunc(svg, func(tag []byte) []byte {
		tag = attrRe.ReplaceAll(tag, nil)
		tag = bytes.TrimRight(bytes.TrimSuffix(tag, []byte(">")), " ")
		return fmt.Appendf(tag, ` viewBox="0 0 %.2f %.2f" width="%d" height="%d">`, w, h, int(w), int(h))
	})
}
