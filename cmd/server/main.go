// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package main is the entry point for the Emotive server.
//
// Emotive runs emotion-adaptive media sessions for a healthcare companion
// app: patients watch a short initial clip, answer a pre-assessment, receive
// therapeutic content matched against their diagnosed emotion, answer a
// post-assessment, and get a genuineness verdict over the whole session.
//
// Initialization order:
//
//  1. Configuration: koanf v2 layering (defaults, optional YAML file,
//     EMOTIVE_-prefixed environment variables)
//  2. Logging: zerolog global logger from config
//  3. Store: BadgerDB (or in-memory for development) holding sessions,
//     the media catalog, and the question bank
//  4. Emotion profiles: built-in table, optionally overlaid from CSV
//  5. Engine: scoring pipeline with the catalog snapshot loaded
//  6. HTTP server: chi router with JWT auth, rate limiting, and /metrics
//
// The server shuts down gracefully on SIGINT and SIGTERM, draining in-flight
// requests within the configured shutdown timeout.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careloop/emotive/internal/api"
	"github.com/careloop/emotive/internal/auth"
	"github.com/careloop/emotive/internal/config"
	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/engine"
	"github.com/careloop/emotive/internal/logging"
	"github.com/careloop/emotive/internal/orchestrator"
	"github.com/careloop/emotive/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend", cfg.Store.Backend).
		Str("addr", cfg.Addr()).
		Bool("auth_enabled", cfg.Auth.Enabled).
		Msg("Starting Emotive")

	st, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	profiles := emotion.LoadTable(cfg.Profiles.CSVPath, logging.Logger())

	eng, err := engine.NewEngine(&cfg.Engine, profiles, logging.With().Str("component", "engine").Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build engine")
	}

	orch := orchestrator.New(st, eng, logging.With().Str("component", "orchestrator").Logger())
	if err := orch.RefreshCatalog(context.Background()); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load media catalog")
	}
	logging.Info().Int("catalog_size", eng.CatalogSize()).Msg("Catalog loaded")

	var tokenManager *auth.Manager
	if cfg.Auth.Enabled {
		tokenManager, err = auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 24*time.Hour)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize token manager")
		}
	} else {
		logging.Warn().Msg("JWT verification disabled, trusting X-Patient-ID header")
	}

	handler := api.NewHandler(orch, st, cfg)
	router := api.NewRouter(handler, auth.NewMiddleware(tokenManager), cfg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Emotive stopped")
}

// openStore builds the configured persistence backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.OpenBadger(cfg.Store.Path)
	}
}
