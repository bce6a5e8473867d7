package main

import (
	"context"
	"fmt"
	"os"

	"swachh-scan-api-server/internal/cli"
)

// Run executes the CLI. With no subcommand it serves the API, which keeps
// `go run ./cmd/api` behaving like the plain server binary.
func Run(ctx context.Context, args []string) int {
	root := cli.NewRootCmd(Version)
	if len(args) == 0 {
		args = []string{"serve"}
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}
