//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Manifests builds plumber and checks every manifest under examples/.
func Manifests() error {
	mg.Deps(Build)
	matches, err := filepath.Glob(manifestGlob)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No manifests found.")
		return nil
	}
	for _, path := range matches {
		if err := sh.RunV(binaryPath(), "check", path); err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
	}
	return nil
}
