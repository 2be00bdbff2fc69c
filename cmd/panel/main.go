package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pkg/browser"

	"mcpanel/internal/api"
	"mcpanel/internal/app"
	"mcpanel/internal/config"
	"mcpanel/internal/proxy"
	"mcpanel/internal/storage"
	"mcpanel/pkg/sdk"
)

func main() {
	open := flag.Bool("open", false, "open the panel in the default browser")
	flag.Parse()

	fmt.Println("Starting mcpanel daemon...")

	configDir, err := config.Dir()
	if err != nil {
		log.Fatalf("Error resolving config directory: %v", err)
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	fmt.Printf("Using process backend: %s\n", cfg.BackendURL)
	fmt.Printf("Using database: %s\n", cfg.DatabasePath)

	store, err := storage.NewGormStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Fatal: Could not open panel database: %v", err)
	}

	backend := sdk.NewClient(cfg.BackendURL)
	container := &app.Container{
		Backend: backend,
		Store:   store,
		Relay:   proxy.NewRelay(backend),
		WSProxy: proxy.NewWSProxy(cfg.BackendURL),
	}

	apiServer := api.NewAPIServer(container)
	listenAddr := fmt.Sprintf(":%d", cfg.Port)

	if *open {
		go func() {
			if err := browser.OpenURL(fmt.Sprintf("http://localhost:%d", cfg.Port)); err != nil {
				log.Printf("Warning: could not open browser: %v", err)
			}
		}()
	}

	if err := apiServer.Start(listenAddr); err != nil {
		log.Fatalf("API Error: %v", err)
	}
}
