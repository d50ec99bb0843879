package main

import (
	"github.com/fablemap/fablemap/internal/server"
	"github.com/fablemap/fablemap/internal/util"
	"github.com/fablemap/fablemap/pkg/logger"
	"github.com/fablemap/fablemap/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
