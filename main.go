package main

import (
	"os"

	"github.com/Eursukkul/event-registration/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
