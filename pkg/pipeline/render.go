package pipeline

import (
	"context"

	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/render/nodelink"
	"github.com/matzehuels/partree/pkg/core/render/sink"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
)

// Render generates output artifacts in the requested formats. The value is
// embedded in JSON output.
func Render(ctx context.Context, root *tree.Node, g levels.Grid, value string, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	r := renderer{root: root, grid: g, value: value, opts: opts}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(ctx, format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderer memoizes the DOT and SVG intermediates shared by several formats.
type renderer struct {
	root  *tree.Node
	grid  levels.Grid
	value string
	opts  Options

	dot string
	svg []byte
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(sink.RenderText(r.grid, sink.WithCellWidth(r.opts.CellWidth))), nil
	case FormatTable:
		return []byte(sink.RenderTable(r.grid, r.tableOptions()...)), nil
	case FormatJSON:
		return sink.RenderJSON(r.root,
			sink.WithJSONExpression(r.opts.Expression),
			sink.WithJSONValue(r.value),
			sink.WithJSONLines(r.opts.CellWidth),
			sink.WithJSONIndent())
	case FormatDOT:
		return []byte(r.toDOT()), nil
	case FormatSVG:
		return r.toSVG(ctx)
	case FormatPNG, FormatPDF:
		svg, err := r.toSVG(ctx)
		if err != nil {
			return nil, err
		}
		return nodelink.Convert(ctx, svg, format, DefaultPNGScale)
	default:
		return nil, ValidateFormat(format)
	}
}

func (r *renderer) tableOptions() []sink.TableOption {
	opts := []sink.TableOption{sink.WithTableCellWidth(r.opts.CellWidth)}
	if r.opts.Detailed {
		opts = append(opts, sink.WithDepthColumn())
	}
	if r.opts.Plain {
		opts = append(opts, sink.WithPlain())
	}
	if r.opts.Headers {
		opts = append(opts, sink.WithColumnHeaders())
	}
	return opts
}

func (r *renderer) toDOT() string {
	if r.dot == "" {
		r.dot = nodelink.ToDOT(r.root, nodelink.Options{Detailed: r.opts.Detailed})
	}
	return r.dot
}

func (r *renderer) toSVG(ctx context.Context) ([]byte, error) {
	if r.svg == nil {
		svg, err := nodelink.RenderSVG(ctx, r.toDOT())
		if err != nil {
			return nil, err
		}
		r.svg = svg
	}
	return r.svg, nil
}
