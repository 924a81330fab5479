package main

import (
	"os"

	"github.com/materialvault/materialvault/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
