//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the plumbing project using Mage.
//
// Usage:
//
//	mage build          Compile the plumber binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the race detector
//	mage test:race      Run all tests with the race detector
//	mage lint           Run golangci-lint
//	mage manifests      Check every manifest under examples/
//	mage clean          Remove build artifacts
//	mage install        Install plumber to GOPATH/bin
package main

const (
	binGo      = "go"
	binaryName = "plumber"
	binaryDir  = "bin"
	cmdDir     = "./cmd/plumber"

	manifestGlob = "examples/*.yaml"
)
