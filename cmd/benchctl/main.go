package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/benchbus/benchbus/internal/benchctl"
	_ "github.com/benchbus/benchbus/internal/logsetup"
)

func main() {
	cmdArgs, err := benchctl.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}

	cli := benchctl.NewCLI(cmdArgs.Config, &http.Client{}, os.Stdout, os.Stderr)

	if err := cli.Execute(cmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}
}
