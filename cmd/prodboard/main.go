package main

import (
	"fmt"
	"os"

	app "github.com/gb2b/prodboard/internal"
	"github.com/gb2b/prodboard/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	boardApp, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing prodboard: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = boardApp.Close() }()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
