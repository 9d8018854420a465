package main

import (
	"os"

	"github.com/Cherwin23/HR-Assistant/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
