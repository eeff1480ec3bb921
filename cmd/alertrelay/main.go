// Command alertrelay plays stream alerts pushed by the panel one at a time.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
