package main

import (
	"os"

	"codeberg.org/mutker/devicectl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
