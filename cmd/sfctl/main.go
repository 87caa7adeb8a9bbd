package main

import (
	"os"

	"github.com/keyxmakerx/storefront/cmd/sfctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
