package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"presale-backend/presaleprogram"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Solana struct {
		RPCURL    string `env:"SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`
		Network   string `env:"SOLANA_NETWORK" envDefault:"devnet"`
		ProgramID string `env:"PRESALE_PROGRAM_ID" envDefault:"88uaiF6Lqq3id6idy6zMv8Pfc4sXb3gvQNLCMWWQHHCL"`
		TokenMint string `env:"TOKEN_MINT" envDefault:"Ah1hf7NZgBhgnhFsrXLoj7czMMiVwUaCHnc5bP9wB6Ge"`
		Authority string `env:"PRESALE_AUTHORITY" envDefault:"94N4YzP2ihmdXNe3SgXJiBjymyBrS73VSz6QwX5QPSor"`
	}

	Ledger struct {
		Path string `env:"LEDGER_PATH" envDefault:"presale.db"`
	}

	VaultPollInterval time.Duration `env:"VAULT_POLL_INTERVAL" envDefault:"10s"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine, production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// ClientConfig maps the Solana section onto the program client config.
func (c *Config) ClientConfig() presaleprogram.Config {
	return presaleprogram.Config{
		RPCURL:    c.Solana.RPCURL,
		Network:   c.Solana.Network,
		ProgramID: c.Solana.ProgramID,
		TokenMint: c.Solana.TokenMint,
		Authority: c.Solana.Authority,
	}
}
