package main

import (
	"context"
	"net/http"
	"time"

	"dragon-backend/internal/chain"
	"dragon-backend/internal/config"
	"dragon-backend/internal/logging"
	"dragon-backend/internal/refresh"
	"dragon-backend/internal/snapshot"
	httptransport "dragon-backend/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}

	client := chain.NewClient(cfg.Chain.RPCURL, chain.Contracts{
		Main:   cfg.Chain.MainContract,
		Battle: cfg.Chain.BattleContract,
		Breed:  cfg.Chain.BreedContract,
		Market: cfg.Chain.MarketContract,
		Names:  cfg.Chain.NamesContract,
	})

	var holder snapshot.Holder
	builder := snapshot.NewBuilder(client)
	scheduler := refresh.New(client, builder, &holder, refresh.PollPolicy{
		Min:          cfg.Refresh.PollMin,
		Max:          cfg.Refresh.PollMax,
		AfterRebuild: cfg.Refresh.PollAfterRebuild,
		ResetEvery:   cfg.Refresh.PollResetEvery,
	})

	// Queries serve 503 until the first snapshot lands.
	log.Info().Str("rpc_url", cfg.Chain.RPCURL).Msg("building initial snapshot")
	if err := scheduler.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("initial snapshot failed")
	}
	go scheduler.Run(context.Background())

	r := httptransport.NewRouter(&holder)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
