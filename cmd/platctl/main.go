package main

import (
	"os"

	"github.com/careerloop/platform/cmd/platctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
