package main

import (
	"os"

	"github.com/hmegen/hmegen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
