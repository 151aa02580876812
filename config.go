package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/ssotops/depot-sync/depot"
)

const (
	defaultConfigPath = "depot-sync.toml"
	defaultBranch     = "depot"
	defaultDepotPath  = "depot.json"
)

type Config struct {
	Source struct {
		Repository string `toml:"repository"`
		Include    string `toml:"include"`
	} `toml:"source"`
	Target struct {
		Repository string `toml:"repository"`
		Branch     string `toml:"branch"`
		Path       string `toml:"path"`
	} `toml:"target"`
	Sync struct {
		Push                 bool   `toml:"push"`
		Descriptor           string `toml:"descriptor"`
		MaxConcurrentFetches int    `toml:"max_concurrent_fetches"`
		Output               string `toml:"output"`
	} `toml:"sync"`
	Log struct {
		Level string `toml:"level"`
		Dir   string `toml:"dir"`
	} `toml:"log"`
}

// ConfigError reports configuration that cannot be used. It is raised
// before any network access.
type ConfigError struct {
	File    string
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" [field: %s]", e.Field)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// loadConfig reads the TOML file at path. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	config := &Config{}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, &ConfigError{File: path, Message: "failed to expand path", Cause: err}
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, &ConfigError{File: path, Message: "failed to unmarshal TOML", Cause: err}
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, &ConfigError{File: path, Message: "failed to read config file", Cause: err}
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Source.Include == "" {
		c.Source.Include = string(depot.IncludeAll)
	}
	if c.Target.Branch == "" {
		c.Target.Branch = defaultBranch
	}
	if c.Target.Path == "" {
		c.Target.Path = defaultDepotPath
	}
	if c.Sync.Descriptor == "" {
		c.Sync.Descriptor = depot.DefaultDescriptorPath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// syncOptions validates the configuration and converts it for the syncer.
// The target repository falls back to the source repository.
func (c *Config) syncOptions() (depot.Options, error) {
	if c.Source.Repository == "" {
		return depot.Options{}, &ConfigError{Field: "source.repository", Message: "source.repository is required"}
	}
	source, err := depot.ParseRepository(c.Source.Repository)
	if err != nil {
		return depot.Options{}, &ConfigError{Field: "source.repository", Message: "invalid repository", Cause: err}
	}

	target := source
	if c.Target.Repository != "" {
		target, err = depot.ParseRepository(c.Target.Repository)
		if err != nil {
			return depot.Options{}, &ConfigError{Field: "target.repository", Message: "invalid repository", Cause: err}
		}
	}

	include, err := depot.ParseIncludeStrategy(c.Source.Include)
	if err != nil {
		return depot.Options{}, &ConfigError{Field: "source.include", Message: "invalid include strategy", Cause: err}
	}

	if c.Sync.MaxConcurrentFetches < 0 {
		return depot.Options{}, &ConfigError{Field: "sync.max_concurrent_fetches", Message: "must not be negative"}
	}

	return depot.Options{
		Source:               source,
		Target:               target,
		Branch:               c.Target.Branch,
		Path:                 c.Target.Path,
		Include:              include,
		Push:                 c.Sync.Push,
		DescriptorPath:       c.Sync.Descriptor,
		MaxConcurrentFetches: c.Sync.MaxConcurrentFetches,
	}, nil
}
