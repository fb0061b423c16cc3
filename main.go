package main

import (
	"os"

	"github.com/abhisek/bonk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
