// Package config loads recipebox settings from an optional YAML file and
// RECIPEBOX_* environment variables. Environment values win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"recipebox/kv"
	"recipebox/store"
)

// ID source names.
const (
	IDsTimestamp = "timestamp"
	IDsUUID      = "uuid"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	Backend         string          `yaml:"backend"`
	DataDir         string          `yaml:"data_dir"`
	Key             string          `yaml:"key"`
	IDs             string          `yaml:"ids"`
	SerializeWrites bool            `yaml:"serialize_writes"`
	Redis           RedisConfig     `yaml:"redis"`
	Firestore       FirestoreConfig `yaml:"firestore"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type FirestoreConfig struct {
	ProjectID  string `yaml:"project_id"`
	Collection string `yaml:"collection"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:         kv.BackendFile,
			DataDir:         "./data",
			Key:             store.DefaultKey,
			IDs:             IDsTimestamp,
			SerializeWrites: true,
			Redis:           RedisConfig{Addr: "localhost:6379"},
			Firestore:       FirestoreConfig{Collection: "recipebox"},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path (when non-empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg. Unknown fields are rejected.
func loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	return nil
}

// Validate rejects settings no backend could run with.
func (c Config) Validate() error {
	if !slices.Contains(kv.Backends(), c.Storage.Backend) {
		return fmt.Errorf("storage.backend %q: %w", c.Storage.Backend, kv.ErrUnknownBackend)
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	switch c.Storage.Backend {
	case kv.BackendFile, kv.BackendBadger, kv.BackendSQLite:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the %s backend", c.Storage.Backend)
		}
	case kv.BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
	case kv.BackendFirestore:
		if c.Storage.Firestore.ProjectID == "" {
			return errors.New("storage.firestore.project_id is required for the firestore backend")
		}
	}
	if c.Storage.IDs != IDsTimestamp && c.Storage.IDs != IDsUUID {
		return fmt.Errorf("storage.ids must be %q or %q, got %q", IDsTimestamp, IDsUUID, c.Storage.IDs)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// KV returns the backend settings in the form kv.Open expects.
func (s StorageConfig) KV() kv.Config {
	return kv.Config{
		Backend: s.Backend,
		DataDir: s.DataDir,
		Redis: kv.RedisConfig{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
		},
		Firestore: kv.FirestoreConfig{
			ProjectID:  s.Firestore.ProjectID,
			Collection: s.Firestore.Collection,
		},
	}
}

// IDSource returns the configured id generator.
func (s StorageConfig) IDSource() store.IDSource {
	if s.IDs == IDsUUID {
		return store.UUIDSource()
	}
	return store.TimestampSource(nil)
}
