package main

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"msktravels/internal/webclient"
	"msktravels/pkg/app"
	"msktravels/pkg/client"
	"msktravels/pkg/config"
)

const (
	serviceName  = "webclient"
	probeTimeout = 2 * time.Second
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load(serviceName)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		cfg.Log.Warn("Could not read .env file", "error", envErr)
	}
	cfg.Log.Info("Starting MSK Travels web client")

	relay, closeRelay, err := webclient.NewRelay(cfg, serviceName)
	if err != nil {
		cfg.Log.Fatal("Failed to set up notification relay", "error", err)
	}

	registry := webclient.NewRegistry(webclient.NewFactory(cfg, relay), cfg.VisitorIdleTTL, cfg.Log)
	tokens := webclient.NewVisitorTokens(cfg.VisitorSecret, cfg.VisitorIdleTTL, cfg.VisitorCookieSecure)

	probe := func(ctx context.Context) error {
		return client.NewAPI(cfg.APIBaseURL, probeTimeout).FetchCSRFToken(ctx)
	}

	application := app.NewApplication(cfg)
	application.SetApp(
		webclient.NewHandler(registry, tokens, cfg.Log),
		webclient.NewHealthHandler(probe, cfg.Log),
	)
	application.OnShutdown(func() {
		if err := closeRelay(); err != nil {
			cfg.Log.Error("Failed to close notification relay", "error", err)
		}
	})
	application.OnShutdown(registry.Stop)

	application.Run()
}
