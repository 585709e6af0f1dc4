package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable overriding the config.
const EnvPrefix = "KETZAL_"

// Load reads the YAML file at path over the defaults. Empty path skips the file. Then the
// dotenv files are loaded into the process environment (missing ones are fine) and the
// KETZAL_* variables override the corresponding values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	if err := cfg.overrideFromEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.NET.Port < 0 || c.NET.Port > 65535:
		return fmt.Errorf("port %d is out of range", c.NET.Port)
	case c.NET.MaxConnections < 1:
		return errors.New("max connections must be positive")
	case c.NET.ReadBufferSize < 1:
		return errors.New("read buffer size must be positive")
	case c.Body.BufferThreshold > c.Body.MaxSize:
		return errors.New("body buffer threshold exceeds the maximal body size")
	case c.Headers.InitialSpace > c.Headers.MaxSpace:
		return errors.New("initial headers space exceeds the maximal one")
	}

	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) overrideFromEnv(lookup lookupFunc) error {
	if host, ok := lookup(EnvPrefix + "HOST"); ok {
		c.NET.Host = host
	}

	ints := []struct {
		key  string
		into func(int64)
	}{
		{"PORT", func(n int64) { c.NET.Port = int(n) }},
		{"MAX_CONNECTIONS", func(n int64) { c.NET.MaxConnections = n }},
		{"CACHE_SIZE", func(n int64) { c.Router.CacheSize = int(n) }},
	}

	for _, v := range ints {
		value, ok := lookup(EnvPrefix + v.key)
		if !ok {
			continue
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, v.key, err)
		}

		v.into(n)
	}

	sizes := []struct {
		key  string
		into *Size
	}{
		{"BODY_THRESHOLD", &c.Body.BufferThreshold},
		{"BODY_MAX_SIZE", &c.Body.MaxSize},
		{"COMPRESSION_THRESHOLD", &c.NET.CompressionThreshold},
	}

	for _, v := range sizes {
		if value, ok := lookup(EnvPrefix + v.key); ok {
			if err := v.into.parse(value); err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, v.key, err)
			}
		}
	}

	if value, ok := lookup(EnvPrefix + "KEEP_ALIVE"); ok {
		keepAlive, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sKEEP_ALIVE: %w", EnvPrefix, err)
		}

		c.NET.KeepAlive = keepAlive
	}

	return nil
}
