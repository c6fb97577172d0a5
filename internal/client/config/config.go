// Package config assembles the client settings shared by the interactive
// application and the notification extension.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// The JSON file uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "reconcile_interval": "30s",
//	  "rpc_timeout": "10s",
//	  "cache_path": "pairroom.db",
//	  "enrichment_budget": "2s",
//	  "log_level": "info"
//	}
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the pairroom client.
//
// CachePath is the SQLite file the application writes and the extension
// reads. EnrichmentBudget bounds one notification enrichment.
type Config struct {
	ServerEndpointAddr string
	ReconcileInterval  time.Duration
	RPCTimeout         time.Duration
	CachePath          string
	EnrichmentBudget   time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ReconcileInterval = 30 * time.Second
	c.RPCTimeout = 10 * time.Second
	c.CachePath = "pairroom.db"
	c.EnrichmentBudget = 2 * time.Second
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config, then flags.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

// LoadConfig is Load over the process arguments.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}
