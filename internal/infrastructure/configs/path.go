package configs

import (
	"flag"
	"os"

	"github.com/Phantasm0009/search-party/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from --config, the
// SEARCH_PARTY_CONFIG env var, or a list of conventional locations. An empty
// result means defaults + env only, which is a valid way to run.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("SEARCH_PARTY_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/search-party/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
