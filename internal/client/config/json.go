package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pairroom/internal/flagx"
	"github.com/dmitrijs2005/pairroom/internal/timex"
)

// JsonConfig is the on-disk shape of the config file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	ReconcileInterval  timex.Duration `json:"reconcile_interval"`
	RPCTimeout         timex.Duration `json:"rpc_timeout"`
	CachePath          string         `json:"cache_path"`
	EnrichmentBudget   timex.Duration `json:"enrichment_budget"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays the fields present in the -c/-config file. Read or
// decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.CachePath != "" {
		cfg.CachePath = jc.CachePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.ReconcileInterval.Duration > 0 {
		cfg.ReconcileInterval = jc.ReconcileInterval.Duration
	}
	if jc.RPCTimeout.Duration > 0 {
		cfg.RPCTimeout = jc.RPCTimeout.Duration
	}
	if jc.EnrichmentBudget.Duration > 0 {
		cfg.EnrichmentBudget = jc.EnrichmentBudget.Duration
	}
}
