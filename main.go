// Package main is the entry point for the viewpoint CLI tool, which computes
// per-player VR focus recommendations from coach-authored tactic keyframes.
package main

import "github.com/tacticast/viewpoint/cmd"

func main() {
	cmd.Execute()
}
