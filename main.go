package main

import (
	"os"

	"github.com/SRIDEV20/AI-powered-interview-simulator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
