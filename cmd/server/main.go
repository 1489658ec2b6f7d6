package main

import (
	"os"

	"github.com/rpggio/boardsum/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
