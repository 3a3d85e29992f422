// Command api serves the HTTP API: tenant registration, ledger views,
// manual run triggers, and run history.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rentledger/rentledger-backend/internal/cli"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/config"
)

func main() {
	_ = godotenv.Load()
	flags := cli.ParseServeFlags()

	var cfg *config.Config
	if flags.ConfigPath != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigPath)
	} else {
		cfg = config.LoadOrEnv()
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		os.Exit(1)
	}
}
