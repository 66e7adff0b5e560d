// Package main is the entry point for the fbmetrics CLI tool, which reads
// football event data and computes per-team match metrics.
package main

import "github.com/pable/go-fb-metrics/cmd"

func main() {
	cmd.Execute()
}
