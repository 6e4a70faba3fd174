package main

import (
	"fmt"
	"os"

	"github.com/ohare93/devlink/internal/cli"
	"github.com/ohare93/devlink/internal/devenv"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(devenv.ExitCode(err))
	}
}
