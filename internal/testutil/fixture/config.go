// Package fixture provides configurations and handler trees for tests
package fixture

import (
	"github.com/yshengliao/convroute/config"
)

// TestConfig returns a valid configuration serving the handler tree in dir
func TestConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Address = ":0"
	cfg.Logger.Level = "error"
	cfg.Route.BaseDir = dir
	cfg.Route.Directory = ""
	return cfg
}

// WithRedirects adds redirects to cfg, in order, and compiles them
func WithRedirects(cfg *config.Config, pairs ...string) *config.Config {
	for i := 0; i+1 < len(pairs); i += 2 {
		cfg.Route.Redirects = append(cfg.Route.Redirects, config.Redirect{Pattern: pairs[i], Target: pairs[i+1]})
	}
	if err := cfg.Route.Redirects.Compile(); err != nil {
		panic(err)
	}
	return cfg
}
