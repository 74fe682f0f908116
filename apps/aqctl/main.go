package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/quatton/aquakeys/apps/aqctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "aqctl crashed: %v\n", r)
			if os.Getenv("AQUAKEYS_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
