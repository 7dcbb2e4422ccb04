// Package main is the entry point for the plumber CLI.
package main

import "github.com/mesh-intelligence/plumbing/internal/cli"

func main() {
	cli.Execute()
}
