//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts every LyX document under tables/.
// Set LYXTAB_BACKEND=container to run LyX from an image.
func Convert() error {
	mg.Deps(Build)
	if err := sh.RunV(binPath(), "convert", "--dir", tablesDir, "--ledger", ledgerPath); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	return nil
}
