package main

import (
	"os"

	"github.com/opclock/opclock/cmd/opclock/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
