package sink

import "github.com/matzehuels/partree/pkg/core/levels"

// TextOption configures [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	cellWidth int
}

// WithCellWidth sets the width of each grid cell. Defaults to
// [levels.DefaultCellWidth].
func WithCellWidth(w int) TextOption { return func(r *textRenderer) { r.cellWidth = w } }

// RenderText renders g as plain text lines.
func RenderText(g levels.Grid, opts ...TextOption) string {
	r := textRenderer{cellWidth: levels.DefaultCellWidth}
	for _, opt := range opts {
		opt(&r)
	}
	return levels.Format(g, r.cellWidth)
}
