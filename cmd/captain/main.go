package main

import (
	"os"

	"github.com/cristofima/maf-graphrag-series/internal/util"
)

func main() {
	util.LoadEnv()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
