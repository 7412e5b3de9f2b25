package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvListenAddr            = "LISTEN_ADDR"
	EnvSecretKey             = "SECRET_KEY"
	EnvTokenValidityDuration = "TOKEN_TTL"
	EnvPasswordHashCost      = "PASSWORD_HASH_COST"
	EnvStorage               = "STORAGE"
	EnvDatabaseDSN           = "DATABASE_DSN"
	EnvLogLevel              = "LOG_LEVEL"
)

func parseEnv(config *Config, lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}

	get := func(key string) (string, bool) {
		v, ok := lookupEnv(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvListenAddr); ok {
		config.ListenAddr = v
	}
	if v, ok := get(EnvSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := get(EnvStorage); ok {
		config.Storage = v
	}
	if v, ok := get(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := get(EnvTokenValidityDuration); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenValidityDuration, err)
		}
		config.TokenValidityDuration = d
	}
	if v, ok := get(EnvPasswordHashCost); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPasswordHashCost, err)
		}
		config.PasswordHashCost = cost
	}
	return nil
}
