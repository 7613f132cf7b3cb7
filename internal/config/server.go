package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig configures cmd/server and cmd/seed
type ServerConfig struct {
	HTTPPort      string
	StoreDriver   string // mongo or memory
	MongoURI      string
	MongoDatabase string
	RedisAddr     string // empty disables caching
	CORSOrigins   []string
	EEG           EEGConfig
}

// EEGConfig describes the external recorder command
type EEGConfig struct {
	Command     string
	Args        []string
	OutputDir   string
	StopTimeout time.Duration
}

// LoadServer reads server.yaml from paths, or the default search paths
func LoadServer(paths ...string) (*ServerConfig, error) {
	v, err := newViper("server", paths)
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	v.SetDefault("http.port", "8080")
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "rscasurvey")
	v.SetDefault("redis.addr", "")
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("eeg.command", "python3")
	v.SetDefault("eeg.args", []string{"eeg_recording.py", "{output}"})
	v.SetDefault("eeg.output_dir", "./recordings")
	v.SetDefault("eeg.stop_timeout", 5*time.Second)

	cfg := &ServerConfig{
		HTTPPort:      v.GetString("http.port"),
		StoreDriver:   strings.ToLower(v.GetString("store.driver")),
		MongoURI:      v.GetString("mongo.uri"),
		MongoDatabase: v.GetString("mongo.database"),
		RedisAddr:     strings.TrimPrefix(v.GetString("redis.addr"), "redis://"),
		CORSOrigins:   v.GetStringSlice("cors.origins"),
		EEG: EEGConfig{
			Command:     v.GetString("eeg.command"),
			Args:        v.GetStringSlice("eeg.args"),
			OutputDir:   v.GetString("eeg.output_dir"),
			StopTimeout: v.GetDuration("eeg.stop_timeout"),
		},
	}

	switch cfg.StoreDriver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return cfg, nil
}
