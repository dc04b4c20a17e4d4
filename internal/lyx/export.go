// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lyx invokes LyX to export documents to LaTeX. Export is treated as
// an opaque external step: the only check on its output is that the .tex
// file exists afterwards.
package lyx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	defaultBin = "lyx"
	extLyX     = ".lyx"
	extTex     = ".tex"

	// stderrTail bounds how much converter stderr is kept in errors.
	stderrTail = 512
)

// ErrExportFailed is matched by every ExportError.
var ErrExportFailed = errors.New("lyx export failed")

// ExportError reports a failed export of a single document.
type ExportError struct {
	LyXPath string
	// Stderr is the tail of the converter's error output, if any.
	Stderr string
	Err    error
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("'lyx --export latex' failed for file %s", e.LyXPath)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	}
	return msg
}

func (e *ExportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExportFailed}
	}
	return []error{ErrExportFailed, e.Err}
}

// Exporter turns a .lyx document into a .tex file next to it.
type Exporter interface {
	// Name identifies the backend in status output.
	Name() string

	// Export converts lyxPath and returns the path of the produced .tex file.
	Export(ctx context.Context, lyxPath string) (string, error)
}

// TexPath returns the .tex path LyX writes for lyxPath: the .lyx extension is
// replaced, or .tex is appended when there is none.
func TexPath(lyxPath string) string {
	if strings.EqualFold(filepath.Ext(lyxPath), extLyX) {
		return strings.TrimSuffix(lyxPath, filepath.Ext(lyxPath)) + extTex
	}
	return lyxPath + extTex
}

// IsLyX reports whether path names a LyX document.
func IsLyX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), extLyX)
}

// executor abstracts command execution for testing.
type executor interface {
	RunContext(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) RunContext(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// NativeExporter runs a locally installed lyx binary.
type NativeExporter struct {
	bin  string
	exec executor
}

// NewNativeExporter returns an exporter for bin. An empty bin means "lyx"
// resolved on PATH.
func NewNativeExporter(bin string) *NativeExporter {
	if bin == "" {
		bin = defaultBin
	}
	return &NativeExporter{bin: bin, exec: osExecutor{}}
}

func (n *NativeExporter) Name() string { return n.bin }

// Export runs "<bin> --export latex <lyxPath>" and verifies the .tex file
// exists afterwards. There is no retry.
func (n *NativeExporter) Export(ctx context.Context, lyxPath string) (string, error) {
	var stderr bytes.Buffer
	err := n.exec.RunContext(ctx, n.bin, []string{"--export", "latex", lyxPath}, io.Discard, &stderr)
	return checkOutput(lyxPath, err, stderr.String())
}

// checkOutput turns a converter run into the produced .tex path or an
// ExportError. A zero exit without the output file is still a failure.
func checkOutput(lyxPath string, runErr error, stderr string) (string, error) {
	if runErr != nil {
		return "", &ExportError{LyXPath: lyxPath, Stderr: tail(stderr), Err: runErr}
	}
	texPath := TexPath(lyxPath)
	info, err := os.Stat(texPath)
	if err != nil {
		return "", &ExportError{LyXPath: lyxPath, Stderr: tail(stderr), Err: fmt.Errorf("no output at %s: %w", texPath, err)}
	}
	if info.IsDir() {
		return "", &ExportError{LyXPath: lyxPath, Err: fmt.Errorf("output %s is a directory", texPath)}
	}
	return texPath, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = "..." + s[len(s)-stderrTail:]
	}
	return s
}
