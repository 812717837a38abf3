// Package main provides the entry point for the ionoview CLI.
//
// ionoview inspects vertical-incidence ionosonde soundings and records the
// operator's scaling (critical frequencies and layer traces) in companion
// files next to each sounding.
//
// Usage:
//
//	ionoview inspect <sounding>
//	ionoview annotate <sounding> --layer F2 --critical 6.25
//	ionoview batch <soundings...>
//
// See --help for all available options.
package main

// main is the entry point for ionoview.
func main() {
	Execute()
}
