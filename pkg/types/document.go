// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one LyX document.
type ConversionStatus string

const (
	// ConversionDone means the .tex file now holds exactly one table.
	ConversionDone ConversionStatus = "converted"
	// ConversionEmpty means export succeeded but no table was found, so the
	// .tex file was truncated.
	ConversionEmpty ConversionStatus = "empty"
	// ConversionSkipped means the document was not processed.
	ConversionSkipped ConversionStatus = "skipped"
	// ConversionFailed means export or extraction failed.
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord describes one document's trip through the pipeline.
type ConversionRecord struct {
	// LyXPath is the source document.
	LyXPath string `json:"lyx_path" yaml:"lyx_path"`

	// TexPath is the exported, cropped output.
	TexPath string `json:"tex_path,omitempty" yaml:"tex_path,omitempty"`

	// Status is the outcome.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Environment is the extracted environment name (e.g. "tabular").
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`

	// Lines is the number of lines written to TexPath.
	Lines int `json:"lines" yaml:"lines"`

	// Error holds the failure or skip reason.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// SourceModTime is the .lyx modification time seen at conversion.
	SourceModTime time.Time `json:"source_mod_time" yaml:"source_mod_time"`

	// ConvertedAt is when the record was produced.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
