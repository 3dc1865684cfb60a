package main

import (
	"os"

	"github.com/cwbudde/go-lsp/cmd/lsp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
