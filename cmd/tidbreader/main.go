package main

import (
	"context"
	"os"

	"github.com/TechXTT/tidbreader/pkg/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("tidbreader exited")
		os.Exit(1)
	}
}
