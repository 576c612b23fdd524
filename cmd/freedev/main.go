package main

import (
	"os"

	"github.com/freedevconnect/freedev/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
