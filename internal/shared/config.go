package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	PropertyID    string        // hotel identifier sent to OTA/channel-manager endpoints
	Workers       int
	AdapterRPS    int
	FetchTimeout  time.Duration
	ProbeTimeout  time.Duration
	SyncInterval  time.Duration // default when a source carries none
	CacheTTL      time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/roomsync?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		PropertyID:   env("PROPERTY_ID", ""),
		Workers:      atoi("SYNC_WORKERS", 4),
		AdapterRPS:   atoi("ADAPTER_RPS", 5),
		FetchTimeout: time.Duration(atoi("FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		ProbeTimeout: time.Duration(atoi("PROBE_TIMEOUT_SECONDS", 5)) * time.Second,
		SyncInterval: time.Duration(atoi("SYNC_INTERVAL_SECONDS", 900)) * time.Second,
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.PropertyID == "" {
		log.Warn().Msg("PROPERTY_ID is empty; OTA and channel-manager fetches will fail")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
