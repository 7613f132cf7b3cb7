package config

import (
	"fmt"
	"time"

	"rscasurvey/internal/flow"
)

// StationConfig configures cmd/station
type StationConfig struct {
	HTTPPort    string
	APIBaseURL  string
	HTTPTimeout time.Duration
	Flow        flow.Config
}

// tables replace the defaults wholesale when present in the file.
// A study section that is present also drops the default skip rule, so
// leaving skip out of it disables skipping.
var flowTables = []string{
	"flow.bands",
	"flow.divider_messages",
	"flow.studies.with_parsons",
	"flow.studies.without_parsons",
	"flow.studies.with_parsons.checkpoints",
	"flow.studies.without_parsons.checkpoints",
}

// LoadStation reads station.yaml from paths, or the default search paths
func LoadStation(paths ...string) (*StationConfig, error) {
	v, err := newViper("station", paths)
	if err != nil {
		return nil, fmt.Errorf("failed to read station config: %w", err)
	}

	v.SetDefault("http.port", "8090")
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 10*time.Second)

	cfg := &StationConfig{
		HTTPPort:    v.GetString("http.port"),
		APIBaseURL:  v.GetString("api.base_url"),
		HTTPTimeout: v.GetDuration("api.timeout"),
		Flow:        flow.DefaultConfig(),
	}

	if v.IsSet("flow") {
		for _, key := range flowTables {
			if !v.IsSet(key) {
				continue
			}
			switch key {
			case "flow.bands":
				cfg.Flow.Bands = nil
			case "flow.divider_messages":
				cfg.Flow.DividerMessages = nil
			case "flow.studies.with_parsons":
				cfg.Flow.Studies.WithParsons.Skip = nil
			case "flow.studies.without_parsons":
				cfg.Flow.Studies.WithoutParsons.Skip = nil
			case "flow.studies.with_parsons.checkpoints":
				cfg.Flow.Studies.WithParsons.Checkpoints = nil
			case "flow.studies.without_parsons.checkpoints":
				cfg.Flow.Studies.WithoutParsons.Checkpoints = nil
			}
		}
		if err := v.UnmarshalKey("flow", &cfg.Flow); err != nil {
			return nil, fmt.Errorf("failed to parse flow policy: %w", err)
		}
	}

	if cfg.Flow.TickInterval <= 0 {
		return nil, fmt.Errorf("flow.tick_interval must be positive")
	}
	return cfg, nil
}
