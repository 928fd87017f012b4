package main

import (
	"os"

	"github.com/rustyeddy/synthbt/cmd/synthbt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
