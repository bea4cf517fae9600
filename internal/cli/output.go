package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout when path is "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := derrors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// basePath derives the output base from an explicit output path or the input
// file. Known format extensions are stripped so "map.png" and "map" name the
// same set of files.
func basePath(output, input, fallback string) string {
	if output == "" {
		if input == "" {
			return fallback
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Graph formats carry compound extensions and are listed last.
	for _, f := range slices.Backward(pipeline.Formats) {
		if ext := "." + pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// artifactWriteParams describes a set of rendered outputs to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string
}

// writeArtifacts writes one file per format as <base>.<ext> and returns the
// paths in format order.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := p.base + "." + pipeline.Extension(format)
		if err := writeFile(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// loadDocument reads a dungeon document and rebuilds its room graph.
func loadDocument(path string) (*dio.Document, *dungeon.Dungeon, error) {
	doc, err := dio.ImportJSON(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	d, err := doc.Dungeon()
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, d, nil
}
