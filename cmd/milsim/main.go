// Package main is the entry point for the milsim tool.
//
// milsim replays recorded pointer-event scripts against an input-engine
// host so gesture specifications can be exercised and debugged without a
// browser embedder.
//
// Usage:
//
//	milsim run <script.yaml>    Replay a script once
//	milsim watch <script.yaml>  Replay on every change to the script
//	milsim version              Print the version
package main

import (
	"os"

	"github.com/go-mil/mil/cmd/milsim/cmd"
	"github.com/go-mil/mil/cmd/milsim/internal/errors"
)

func main() {
	defer errors.RecoverPanic()
	if err := cmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}
