// unimodmapper - Unimod modification lookup and mapping tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/UnimodMapper/cmd/unimodmapper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
