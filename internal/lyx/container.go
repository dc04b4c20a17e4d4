// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lyx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/lyxtab/internal/container"
)

const (
	defaultImage = "lyx:latest"
	mountTarget  = "/data"
)

// ContainerExporter runs lyx inside a container image. The document's
// directory is bind-mounted so the .tex file lands next to the .lyx file on
// the host.
type ContainerExporter struct {
	runtime container.Runtime
	image   string
}

// NewContainerExporter verifies that image exists in rt before returning.
// An empty image selects "lyx:latest".
func NewContainerExporter(rt container.Runtime, image string) (*ContainerExporter, error) {
	if image == "" {
		image = defaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("lyx image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerExporter{runtime: rt, image: image}, nil
}

func (c *ContainerExporter) Name() string {
	return c.runtime.Name() + ":" + c.image
}

// Export runs "lyx --export latex <file>" in the container and verifies the
// .tex file exists on the host afterwards.
func (c *ContainerExporter) Export(ctx context.Context, lyxPath string) (string, error) {
	abs, err := filepath.Abs(lyxPath)
	if err != nil {
		return "", &ExportError{LyXPath: lyxPath, Err: err}
	}
	spec := container.RunSpec{
		Image:   c.image,
		Mounts:  []container.Mount{{Source: filepath.Dir(abs), Target: mountTarget}},
		Workdir: mountTarget,
		Args:    []string{defaultBin, "--export", "latex", filepath.Base(abs)},
	}

	var stderr bytes.Buffer
	runErr := c.runtime.Run(ctx, spec, io.Discard, &stderr)
	return checkOutput(lyxPath, runErr, stderr.String())
}
