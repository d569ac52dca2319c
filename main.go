package main

import (
	"os"

	"github.com/calltrace/callpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
