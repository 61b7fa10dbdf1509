package main

import (
	"os"

	"github.com/aldress/medallion/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
