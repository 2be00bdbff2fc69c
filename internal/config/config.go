package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	defaultConfigName   = "config.json"
	defaultDatabaseFile = "panel.db"
	defaultBackendURL   = "http://127.0.0.1:5033"
	defaultPort         = 8080
)

type Config struct {
	BackendURL   string `json:"backend_url"`
	DatabasePath string `json:"database_path"`
	Port         int    `json:"port"`
}

// LoadConfig reads the panel configuration from configDir, creating it with
// defaults on first run.
func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, defaultConfigName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath, configDir)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = defaultBackendURL
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(configDir, defaultDatabaseFile)
	}

	return &cfg, nil
}

func createDefaultConfig(configPath, configDir string) (*Config, error) {
	cfg := Config{
		BackendURL:   defaultBackendURL,
		DatabasePath: filepath.Join(configDir, defaultDatabaseFile),
		Port:         defaultPort,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDev reports whether the panel runs against a development environment.
func IsDev() bool {
	return os.Getenv("MCPANEL_ENV") == "dev"
}

// Dir resolves the panel's config directory under the user config root.
func Dir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appName := "mcpanel"
	if IsDev() {
		appName = "mcpanel-dev"
	}
	return filepath.Join(userConfigDir, appName), nil
}
