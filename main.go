package main

import (
	"fmt"
	"os"

	"github.com/thiagokokada/storygraph/cmd"
	"github.com/thiagokokada/storygraph/internal/buildinfo"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", buildinfo.Name, err)
		os.Exit(1)
	}
}
