package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides cfg with any RECIPEBOX_* variables that are set and
// non-empty.
func applyEnv(cfg *Config) error {
	envString("RECIPEBOX_BACKEND", &cfg.Storage.Backend)
	envString("RECIPEBOX_DATA_DIR", &cfg.Storage.DataDir)
	envString("RECIPEBOX_STORAGE_KEY", &cfg.Storage.Key)
	envString("RECIPEBOX_ID_SOURCE", &cfg.Storage.IDs)
	envString("RECIPEBOX_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	envString("RECIPEBOX_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	envString("RECIPEBOX_FIRESTORE_PROJECT", &cfg.Storage.Firestore.ProjectID)
	envString("RECIPEBOX_FIRESTORE_COLLECTION", &cfg.Storage.Firestore.Collection)
	envString("RECIPEBOX_LISTEN_ADDR", &cfg.Server.Addr)
	envString("RECIPEBOX_LOG_LEVEL", &cfg.Log.Level)
	envString("RECIPEBOX_LOG_FORMAT", &cfg.Log.Format)
	envString("RECIPEBOX_LOG_FILE", &cfg.Log.File)

	if v, ok := lookup("RECIPEBOX_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v, ok := lookup("RECIPEBOX_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RECIPEBOX_REDIS_DB: %w", err)
		}
		cfg.Storage.Redis.DB = db
	}
	if v, ok := lookup("RECIPEBOX_SERIALIZE_WRITES"); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RECIPEBOX_SERIALIZE_WRITES: %w", err)
		}
		cfg.Storage.SerializeWrites = on
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
