package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// credentialsEnv maps the IONOS_* environment variables
type credentialsEnv struct {
	Token      string `env:"IONOS_TOKEN"`
	Username   string `env:"IONOS_USERNAME"`
	Password   string `env:"IONOS_PASSWORD"`
	ContractID string `env:"IONOS_CONTRACT_ID"`
}

// LoadCredentials reads remote credentials from the environment. Each
// dotenv file that exists is loaded first; variables already set in the
// process environment win. With no files given, ".env" is tried.
func LoadCredentials(dotenvFiles ...string) (types.Credentials, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}

	for _, file := range dotenvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return types.Credentials{}, errors.Config("failed to load "+file, err)
		}
	}

	var c credentialsEnv
	if err := env.Parse(&c); err != nil {
		return types.Credentials{}, errors.Config("failed to parse credentials from environment", err)
	}

	return types.Credentials{
		Token:      c.Token,
		Username:   c.Username,
		Password:   c.Password,
		ContractID: c.ContractID,
	}, nil
}
