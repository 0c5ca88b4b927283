// Package main provides advctl, the operator CLI for seeds, encounters and
// character inventories.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{}
	defer a.close()
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}
