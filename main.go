package main

import (
	"os"

	"github.com/electromart/agenthub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
