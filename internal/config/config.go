// Package config loads driver properties from a cufile.json-style
// file. The path comes from CUFILE_ENV_PATH_JSON, falling back to
// /etc/cufile.json; a missing file means defaults, not an error.
package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPathJSON = "CUFILE_ENV_PATH_JSON"
	defaultPath = "/etc/cufile.json"
)

type Properties struct {
	LogLevel          string
	MaxDirectIOSizeKB int
	UsePollMode       bool
	PollModeMaxSizeKB int
	AllowCompatMode   bool
	MetricsEnabled    bool
	StatsdAddress     string
}

func Defaults() Properties {
	return Properties{
		LogLevel:          "warn",
		MaxDirectIOSizeKB: 16384,
		UsePollMode:       false,
		PollModeMaxSizeKB: 4,
		AllowCompatMode:   true,
		MetricsEnabled:    false,
		StatsdAddress:     "localhost:8125",
	}
}

func Load() Properties {
	path := os.Getenv(EnvPathJSON)
	if path == "" {
		path = defaultPath
	}

	d := Defaults()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("logging.level", d.LogLevel)
	v.SetDefault("properties.max_direct_io_size_kb", d.MaxDirectIOSizeKB)
	v.SetDefault("properties.use_poll_mode", d.UsePollMode)
	v.SetDefault("properties.poll_mode_max_size_kb", d.PollModeMaxSizeKB)
	v.SetDefault("properties.allow_compat_mode", d.AllowCompatMode)
	v.SetDefault("metrics.enabled", d.MetricsEnabled)
	v.SetDefault("metrics.statsd_address", d.StatsdAddress)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Debug().Msgf("No driver properties file at %s, using defaults", path)
		} else {
			log.Warn().Msgf("Failed to read driver properties from %s, using defaults: %v", path, err)
		}
	}

	return Properties{
		LogLevel:          v.GetString("logging.level"),
		MaxDirectIOSizeKB: v.GetInt("properties.max_direct_io_size_kb"),
		UsePollMode:       v.GetBool("properties.use_poll_mode"),
		PollModeMaxSizeKB: v.GetInt("properties.poll_mode_max_size_kb"),
		AllowCompatMode:   v.GetBool("properties.allow_compat_mode"),
		MetricsEnabled:    v.GetBool("metrics.enabled"),
		StatsdAddress:     v.GetString("metrics.statsd_address"),
	}
}
