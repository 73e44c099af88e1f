package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// configure zerolog console output; the level comes from LOG_LEVEL
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("stintd failed")
		os.Exit(1)
	}
}
