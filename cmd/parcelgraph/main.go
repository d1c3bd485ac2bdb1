package main

import (
	"os"

	"github.com/agenthands/parcelgraph/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
