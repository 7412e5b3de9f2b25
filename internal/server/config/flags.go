package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-s string   JWT HMAC secret key
//	-t int      token validity, hours
//	-w int      bcrypt cost
//	-b string   storage backend: memory or postgres
//	-d string   PostgreSQL DSN
//	-l string   log level
//
// Only these flags are taken from args, so -c/-config and test runner
// flags do not trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-w", "-b", "-d", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenHours := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")
	fs.IntVar(&config.PasswordHashCost, "w", config.PasswordHashCost, "bcrypt cost")
	fs.StringVar(&config.Storage, "b", config.Storage, "storage backend (memory|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t only overrides when given, so sub-hour durations from JSON/env survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenHours) * time.Hour
		}
	})
	return nil
}
