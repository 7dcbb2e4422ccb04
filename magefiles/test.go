//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race).
type Test mg.Namespace

// All runs all tests verbosely.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs all tests without verbose output.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector. The composer and registry
// tests compose and call from many goroutines.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}
