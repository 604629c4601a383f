package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/gitguardian/ggrelease/cmd"
)

func main() {
	// All logic lives in the cmd package; main only reports the failure.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
