// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs LyX documents through export and table extraction,
// one file at a time or in batches.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/lyxtab/internal/ledger"
	"github.com/pdiddy/lyxtab/internal/lyx"
	"github.com/pdiddy/lyxtab/internal/texenv"
	"github.com/pdiddy/lyxtab/pkg/types"
)

// Options tune a conversion run.
type Options struct {
	// Ledger, when set, is consulted to skip unchanged documents and is
	// updated with every outcome.
	Ledger *ledger.Ledger

	// Force ignores the ledger's skip decision.
	Force bool

	// Timeout bounds each export. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int                      `json:"converted" yaml:"converted"`
	Empty     int                      `json:"empty" yaml:"empty"`
	Skipped   int                      `json:"skipped" yaml:"skipped"`
	Failed    int                      `json:"failed" yaml:"failed"`
	Records   []types.ConversionRecord `json:"records" yaml:"records"`
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Empty + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(rec types.ConversionRecord) {
	switch rec.Status {
	case types.ConversionDone:
		r.Converted++
	case types.ConversionEmpty:
		r.Empty++
	case types.ConversionSkipped:
		r.Skipped++
	case types.ConversionFailed:
		r.Failed++
	}
	r.Records = append(r.Records, rec)
}

// ConvertFile exports lyxPath to LaTeX and crops the result to its first
// table. It writes one status line to w and never aborts on a per-file
// error; the error is carried in the returned record instead.
func ConvertFile(ctx context.Context, exp lyx.Exporter, ex *texenv.Extractor, lyxPath string, opts Options, w io.Writer) types.ConversionRecord {
	rec := types.ConversionRecord{LyXPath: lyxPath, ConvertedAt: time.Now().UTC()}
	name := filepath.Base(lyxPath)

	if !lyx.IsLyX(lyxPath) {
		rec.Status = types.ConversionSkipped
		rec.Error = "not a .lyx file"
		fmt.Fprintf(w, "skipped: %s (not a .lyx file)\n", lyxPath)
		return rec
	}

	info, err := os.Stat(lyxPath)
	if err != nil {
		return fail(ctx, rec, err, opts, w)
	}
	rec.SourceModTime = info.ModTime().UTC()

	if opts.Ledger != nil && !opts.Force {
		texPath := lyx.TexPath(lyxPath)
		unchanged, err := opts.Ledger.Unchanged(ctx, lyxPath, rec.SourceModTime)
		if err != nil {
			fmt.Fprintf(w, "warning: %s: %v\n", name, err)
		} else if unchanged && fileExists(texPath) {
			rec.Status = types.ConversionSkipped
			rec.TexPath = texPath
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", name)
			return rec
		}
	}

	exportCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		exportCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	texPath, err := exp.Export(exportCtx, lyxPath)
	if err != nil {
		return fail(ctx, rec, err, opts, w)
	}
	rec.TexPath = texPath

	env, err := ex.CropFile(texPath)
	if err != nil {
		return fail(ctx, rec, err, opts, w)
	}

	rec.Environment = env.Name
	rec.Lines = env.Len()
	if env.Found() {
		rec.Status = types.ConversionDone
		fmt.Fprintf(w, "converted: %s (%s, %d lines)\n", name, env.Name, env.Len())
	} else {
		rec.Status = types.ConversionEmpty
		fmt.Fprintf(w, "empty:   %s (no matching environment)\n", name)
	}
	record(ctx, rec, opts, w)
	return rec
}

func fail(ctx context.Context, rec types.ConversionRecord, err error, opts Options, w io.Writer) types.ConversionRecord {
	rec.Status = types.ConversionFailed
	rec.Error = err.Error()
	fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(rec.LyXPath), err)
	record(ctx, rec, opts, w)
	return rec
}

// record stores rec in the ledger when one is configured. Ledger errors are
// reported but do not change the conversion outcome.
func record(ctx context.Context, rec types.ConversionRecord, opts Options, w io.Writer) {
	if opts.Ledger == nil {
		return
	}
	if err := opts.Ledger.Record(ctx, rec); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ConvertBatch converts each path in order, printing per-file status to w
// and a summary line at the end. Cancelling ctx stops the batch before the
// next file.
func ConvertBatch(ctx context.Context, exp lyx.Exporter, ex *texenv.Extractor, paths []string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "stopped: %v\n", ctx.Err())
			break
		}
		result.add(ConvertFile(ctx, exp, ex, p, opts, w))
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d empty, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Empty, result.Skipped, result.Failed, result.Total())
	return result
}

// CropBatch crops already-exported .tex files without running LyX.
func CropBatch(ex *texenv.Extractor, texPaths []string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range texPaths {
		rec := types.ConversionRecord{TexPath: p, ConvertedAt: time.Now().UTC()}
		env, err := ex.CropFile(p)
		switch {
		case err != nil:
			rec.Status = types.ConversionFailed
			rec.Error = err.Error()
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(p), err)
		case env.Found():
			rec.Status = types.ConversionDone
			rec.Environment = env.Name
			rec.Lines = env.Len()
			fmt.Fprintf(w, "cropped: %s (%s, %d lines)\n", filepath.Base(p), env.Name, env.Len())
		default:
			rec.Status = types.ConversionEmpty
			fmt.Fprintf(w, "empty:   %s (no matching environment)\n", filepath.Base(p))
		}
		result.add(rec)
	}
	fmt.Fprintf(w, "\nCrop summary: %d cropped, %d empty, %d failed (total: %d)\n",
		result.Converted, result.Empty, result.Failed, result.Total())
	return result
}
