package main

import (
	"os"

	"github.com/mailify/mailgraph/cmd/mailgraph"
)

func main() {
	if err := mailgraph.Execute(); err != nil {
		os.Exit(1)
	}
}
