package main

import (
	"os"

	"github.com/wrenhunt/sourcer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
