package main

import (
	"os"

	"github.com/solatis/typecodec/cmd/typecodec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
