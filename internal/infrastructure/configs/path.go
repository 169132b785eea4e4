package configs

import (
	"flag"
	"os"

	"github.com/MP3-NJJJPF/SERVER-CHAT-PI/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// CHATPI_CONFIG env var, then a list of conventional locations. An empty
// result means "run on defaults and env overrides only".
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("CHATPI_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/chatpi/config.yaml",
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
