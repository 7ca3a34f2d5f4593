package main

import (
	"fmt"
	"os"

	"github.com/paradise-voice/travel-knowledge/internal/adapters/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
