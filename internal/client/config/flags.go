package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/flagx"
)

// parseFlags overlays flag values on cfg:
//
//	-a string   address and port of the directory server
//	-i int      reconcile interval, seconds
//	-r int      per-call RPC timeout, seconds
//	-f string   local cache file
//	-n int      notification enrichment budget, milliseconds
//
// Only these flags are looked at; the rest of args is left to other loaders.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-r", "-f", "-n"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	interval := fs.Int("i", int(cfg.ReconcileInterval.Seconds()), "reconcile interval (in seconds)")
	timeout := fs.Int("r", int(cfg.RPCTimeout.Seconds()), "rpc timeout (in seconds)")
	fs.StringVar(&cfg.CachePath, "f", cfg.CachePath, "local cache file")
	budget := fs.Int("n", int(cfg.EnrichmentBudget.Milliseconds()), "notification enrichment budget (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ReconcileInterval = time.Duration(*interval) * time.Second
	cfg.RPCTimeout = time.Duration(*timeout) * time.Second
	cfg.EnrichmentBudget = time.Duration(*budget) * time.Millisecond
}
