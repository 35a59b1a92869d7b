package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/lintang-b-s/livenav/pkg"
	"github.com/spf13/viper"
)

// ReadConfig. read ./data/config.yaml if present. environment variables always override file values.
func ReadConfig() error {
	SetDefaults()
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func SetDefaults() {
	viper.SetDefault("TCP_PORT", 5555)
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_ENABLED", true)
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("API_RATE_LIMIT", 100)
	viper.SetDefault("SNAP_RADIUS", 0.0)

	viper.SetDefault("GRAPH_META", "./data/graph.meta")
	viper.SetDefault("GRAPH_NODES", "./data/nodes.csv")
	viper.SetDefault("GRAPH_EDGES", "./data/edges.csv")
	viper.SetDefault("NOMINAL_SPEED", pkg.DEFAULT_NOMINAL_SPEED)

	viper.SetDefault("MAX_LINE_BYTES", pkg.DEFAULT_MAX_LINE_BYTES)
	viper.SetDefault("MAX_RESPONSE_BYTES", pkg.DEFAULT_MAX_RESPONSE_BYTES)
	viper.SetDefault("MAX_SETTLED_NODES", 0)
	viper.SetDefault("MAX_PATH_EDGES", 0)
	viper.SetDefault("HEURISTIC_SCALE", 1.0)
	viper.SetDefault("IDLE_TIMEOUT", time.Duration(0))
	viper.SetDefault("UPDATE_RATE_LIMIT", 0.0)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_DEVELOPMENT", false)
}
