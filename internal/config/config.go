// Package config loads settings from an optional server.yaml or station.yaml plus environment
// overrides, where a key such as mongo.uri is read from MONGO_URI.
package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

var defaultPaths = []string{"./config", ".", "../config"}

func newViper(name string, paths []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = defaultPaths
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Printf("[Config] %s.yaml not found, using environment and defaults", name)
	} else {
		log.Printf("[Config] Loaded %s", v.ConfigFileUsed())
	}
	return v, nil
}
