package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Raster and document formats supported by [Convert].
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Convert turns SVG bytes into PDF or PNG using rsvg-convert. Scale applies
// to PNG only; values <= 0 mean 1x.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	var args []string
	switch format {
	case FormatPDF:
	case FormatPNG:
		if scale <= 0 {
			scale = 1
		}
		args = append(args, "-z", fmt.Sprintf("%.2f", scale))
	default:
		return nil, fmt.Errorf("unsupported conversion format %q", format)
	}

	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", append([]string{"-f", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
