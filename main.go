// ABOUTME: Entry point for the hmicap command
// ABOUTME: Hands the command line to the cobra CLI
package main

import (
	"os"

	"github.com/hmicap/hmicap-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
