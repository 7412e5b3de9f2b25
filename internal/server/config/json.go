package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/usersvc/internal/flagx"
	"github.com/dmitrijs2005/usersvc/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "24h"-style strings and integer nanoseconds. Zero values leave the current
// setting untouched.
type JsonConfig struct {
	ListenAddr            string         `json:"listen_addr"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	PasswordHashCost      int            `json:"password_hash_cost"`
	Storage               string         `json:"storage"`
	DatabaseDSN           string         `json:"database_dsn"`
	LogLevel              string         `json:"log_level"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays values from the file named by -c/-config. Without
// either flag it does nothing.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
