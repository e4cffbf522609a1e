package main

import (
	"github.com/benchbus/benchbus/internal/api"
	"github.com/benchbus/benchbus/internal/cli"
	_ "github.com/benchbus/benchbus/internal/logsetup"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return api.NewConfig() },
		api.NewAPIHandler(),
	)
}
