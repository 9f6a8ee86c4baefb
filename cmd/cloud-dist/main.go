package main

import (
	"os"

	"github.com/Frida7771/cloud-dist/cmd/cloud-dist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
