package main

import (
	"context"
	"os"

	"github.com/evanw/esbuild-plugin-monaco/pkg/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:]))
}
