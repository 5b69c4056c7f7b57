// Package main provides the contentdesk CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/contentdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
