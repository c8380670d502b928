package main

import (
	"os"

	"github.com/codeprism/codeprism/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
