package main

import (
	"os"

	"github.com/tubelens/tubelens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
