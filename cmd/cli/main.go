package main

import (
	"fmt"
	"log"

	"mcpanel/internal/cli/cmd"
	"mcpanel/internal/config"
)

func main() {
	configDir, err := config.Dir()
	if err != nil {
		log.Fatalf("Error resolving config directory: %v", err)
	}
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	cmd.Execute(fmt.Sprintf("http://localhost:%d", cfg.Port))
}
