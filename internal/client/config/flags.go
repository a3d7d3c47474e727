package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/fraudwatch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the fraud-detection API
//	-t int      request timeout (in seconds)
//	-s string   session storage driver: memory, sqlite or redis
//	-l string   log level
//
// Only these flags are picked out of args (see flagx.FilterArgs), so the
// JSON loader's -c/-config does not trip the parser. Panics on bad values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the fraud-detection API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.Storage.Driver, "s", cfg.Storage.Driver, "session storage driver (memory, sqlite, redis)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only wins when given; env and JSON may carry sub-second timeouts.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
