package pipeline

import (
	"fmt"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/fit"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/render"
	"github.com/n8l/dungeonmap/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. Grid formats
// require a layout; json and graph formats work on the dungeon alone.
func Render(d *dungeon.Dungeon, layout *fit.Result, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = dio.Marshal(dio.NewDocument(d, layout))
		case FormatPNG, FormatSVG, FormatText:
			if layout == nil {
				return nil, fmt.Errorf("render %s: %w", format, dio.ErrNoLayout)
			}
			data, err = render.Render(format, layout.Grid, layout.Bounds, opts.RenderOptions()...)
		case FormatDOT, FormatGraphSVG, FormatGraphPNG:
			if dot == "" {
				dot = nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed})
			}
			data, err = nodelink.Render(dot, graphFormat(format))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func graphFormat(format string) string {
	switch format {
	case FormatGraphSVG:
		return nodelink.FormatSVG
	case FormatGraphPNG:
		return nodelink.FormatPNG
	}
	return nodelink.FormatDOT
}
