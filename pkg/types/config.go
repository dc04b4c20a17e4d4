package types

import "time"

// ExportBackend identifies how LyX is invoked to produce LaTeX.
type ExportBackend string

const (
	// BackendNative runs a lyx binary found on PATH.
	BackendNative ExportBackend = "native"
	// BackendContainer runs lyx inside a docker or podman image.
	BackendContainer ExportBackend = "container"
)

// ExportConfig holds settings for the LyX to LaTeX export step.
type ExportConfig struct {
	// Backend selects the export strategy: native or container.
	Backend ExportBackend `json:"backend" yaml:"backend"`

	// LyXBin is the lyx executable for the native backend (default "lyx").
	LyXBin string `json:"lyx_bin" yaml:"lyx_bin"`

	// Image is the container image for the container backend (default "lyx:latest").
	Image string `json:"image" yaml:"image"`

	// Timeout bounds a single export invocation. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ConversionConfig holds settings for the convert command.
type ConversionConfig struct {
	ExportConfig `yaml:",inline"`

	// Environments is the regular-expression alternation of environment
	// names to extract (default "tabular[*a-z]?|sideways").
	Environments string `json:"environments" yaml:"environments"`

	// Glob selects .lyx files below a directory (default "**/*.lyx").
	Glob string `json:"glob" yaml:"glob"`

	// LedgerPath is the SQLite conversion ledger. Empty disables it.
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"`

	// Force converts files even when the ledger says they are unchanged.
	Force bool `json:"force" yaml:"force"`
}
