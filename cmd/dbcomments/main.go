// Package main provides the dbcomments CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/dbcomments/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
