package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/luisthe-dev/myinvite-go/internal/config"
)

const defaultLogLevel = "warn"

// settings is what the CLI runs with after flags, the TOML config and the
// built-in defaults are reconciled. Flags win over the config file; the
// config loader already applied the env var override for the API address.
type settings struct {
	apiAddress string
	stateDir   string
	logLevel   string
}

func resolveSettings(cfg *config.Config, apiFlag, stateDirFlag, logLevelFlag string) (settings, error) {
	s := settings{
		apiAddress: apiFlag,
		stateDir:   stateDirFlag,
		logLevel:   logLevelFlag,
	}

	if cfg != nil {
		if s.apiAddress == "" {
			s.apiAddress = cfg.APIAddress
		}
		if s.logLevel == "" {
			s.logLevel = cfg.LogLevel
		}
		if s.stateDir == "" {
			stateDir, err := cfg.StateDirOrDefault()
			if err != nil {
				return settings{}, fmt.Errorf("resolve state dir: %w", err)
			}
			s.stateDir = stateDir
		}
	}

	if s.stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return settings{}, fmt.Errorf("resolve home dir: %w", err)
		}
		s.stateDir = filepath.Join(home, ".myinvite")
	}
	if s.logLevel == "" {
		s.logLevel = defaultLogLevel
	}

	// empty apiAddress is fine, the client falls back to the env var and
	// then the local default
	return s, nil
}

// loadConfig reads the TOML config when the file is there. A missing file
// is not an error for the CLI, everything has a default.
func loadConfig(env, path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return config.Load(env, path)
}
