package main

import (
	"os"

	"github.com/wonny/riskscope/cmd/riskctl/commands"
)

// main is the entry point for the riskscope CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/riskctl [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
