package storage

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/jrife/stash/storage/kv"
)

// EnvConfig is the environment-driven store configuration. It covers
// the options of every built-in driver; each driver reads only the
// options it recognizes.
type EnvConfig struct {
	Driver string `env:"STASH_DRIVER" envDefault:"sqlite"`
	Path   string `env:"STASH_PATH"`
	Name   string `env:"STASH_NAME"`
	Host   string `env:"STASH_HOST"`
	Port   string `env:"STASH_PORT"`
}

// Options converts the parsed environment into backend options,
// leaving out options that were not set so that driver defaults
// apply.
func (config EnvConfig) Options() kv.Options {
	options := kv.Options{}

	if config.Path != "" {
		options["path"] = config.Path
	}

	if config.Name != "" {
		options["name"] = config.Name
	}

	if config.Host != "" {
		options["host"] = config.Host
	}

	if config.Port != "" {
		options["port"] = config.Port
	}

	return options
}

// OpenFromEnv builds a Store for context from the STASH_* environment
// variables.
func OpenFromEnv(context interface{}, opts ...Option) (*Store, error) {
	var config EnvConfig

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("could not parse environment: %s", err.Error())
	}

	return Open(config.Driver, context, config.Options(), opts...)
}
