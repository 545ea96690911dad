package main

import (
	"os"

	"coffre/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
