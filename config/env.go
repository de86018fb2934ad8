package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables consulted for command-line defaults.
const (
	EnvConfig    = "SIMLAC_CONFIG"
	EnvSeed      = "SIMLAC_SEED"
	EnvOutputDir = "SIMLAC_OUTPUT_DIR"
)

// Env holds command-line defaults taken from the process environment.
// Flags given explicitly still win over these.
type Env struct {
	ConfigPath string
	Seed       int64
	OutputDir  string
}

// LoadEnv reads an optional .env file from the working directory and then
// collects the SIMLAC_* variables. Variables already set in the process
// environment take precedence over the file.
func LoadEnv(files ...string) Env {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring unreadable env file", "error", err)
	}

	env := Env{
		ConfigPath: os.Getenv(EnvConfig),
		OutputDir:  os.Getenv(EnvOutputDir),
	}
	if raw := os.Getenv(EnvSeed); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			slog.Warn("ignoring invalid seed", "var", EnvSeed, "value", raw, "error", err)
		} else {
			env.Seed = seed
		}
	}
	return env
}
