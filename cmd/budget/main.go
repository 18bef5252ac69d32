package main

import (
	"os"

	"budget/cmd/budget/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
