package main

import (
	"os"

	"github.com/strideiq/policyengine/cmd/policyctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
