package main

import (
	"os"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
