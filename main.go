package main

import (
	"os"
	"os/signal"

	"github.com/habedi/hrgo/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const interruptMessage = "Interrupt signal received. Exiting..."

// main sets up logging from DEBUG_HRGO, exits on interrupt, and runs the CLI.
func main() {
	configureLogLevelFromEnv()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, func(msg string) { log.Error().Msg(msg) }, os.Exit)

	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging to stderr when DEBUG_HRGO is
// set to anything but "", "0" or "false". Logging is disabled otherwise.
func configureLogLevelFromEnv() {
	switch os.Getenv("DEBUG_HRGO") {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

// handleInterrupt waits for a signal, logs, and exits with status 1.
func handleInterrupt(stopChan chan os.Signal, fatalLog func(string), exit func(int)) {
	<-stopChan
	fatalLog(interruptMessage)
	exit(1)
}
