// Package main runs the teller API to manage users, accounts and money transfers.
package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/go-teller/teller/cmd/httpserver"
	"github.com/go-teller/teller/internal/filestore"
	"github.com/go-teller/teller/internal/middleware"
	"github.com/go-teller/teller/internal/pgstore"
	"github.com/go-teller/teller/pkg/configpkg"
	"github.com/go-teller/teller/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	store, err := openStore(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open store")
	}

	server, err := httpserver.New(store, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("backend", config.StoreBackend).Msg("TELLER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func openStore(config configpkg.Config) (httpserver.Store, error) {
	switch config.StoreBackend {
	case configpkg.BackendPostgres:
		db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			return nil, err
		}

		return pgstore.New(db, config.LockTimeout), nil
	case configpkg.BackendFile:
		return filestore.Open(config.StoreFile, config.LockTimeout)
	}

	return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
}
