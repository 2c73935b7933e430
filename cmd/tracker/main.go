package main

import (
	"os"

	"github.com/trogers1052/portfolio-tracker/cmd/tracker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
