package main

import (
	"os"

	"trailhead/cmd/trailhead/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
