package main

import (
	"os"

	"github.com/dshills/commitgenie/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
