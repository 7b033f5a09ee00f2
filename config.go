package main

import (
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type config struct {
	listenAddr     string
	backend        string
	badgerPath     string
	redisConn      string
	storageConn    string
	snapshotTable  string
	cacheTTL       time.Duration
	activityQueue  string
	eventsChannel  string
	jwtSecret      string
	sessionTTL     time.Duration
	deduperTTL     time.Duration
	toastTTL       time.Duration
	saverTimeout   time.Duration
	publishTimeout time.Duration
	subscriberBuff int
}

func loadConfig() config {
	cfg := config{
		listenAddr:     ":8080",
		backend:        envString("STORAGE_BACKEND", "memory"),
		badgerPath:     envString("BADGER_PATH", "data/momentum"),
		redisConn:      os.Getenv("REDIS_CONNECTION_STRING"),
		storageConn:    os.Getenv("STORAGE_CONNECTION_STRING"),
		snapshotTable:  envString("SNAPSHOT_TABLE", "MomentumSnapshots"),
		cacheTTL:       envDur("SNAPSHOT_CACHE_TTL", 5*time.Minute),
		activityQueue:  os.Getenv("ACTIVITY_QUEUE"),
		eventsChannel:  envString("BOARD_EVENTS_CHANNEL", "board-events"),
		jwtSecret:      os.Getenv("AUTH_JWT_SECRET"),
		sessionTTL:     envDur("SESSION_TTL", 24*time.Hour),
		deduperTTL:     envDur("DEDUPER_TTL", 24*time.Hour),
		toastTTL:       envDur("TOAST_TTL", 3*time.Second),
		saverTimeout:   envDur("SAVER_TIMEOUT", 10*time.Second),
		publishTimeout: envDur("PUBLISH_TIMEOUT", 30*time.Second),
		subscriberBuff: envInt("STREAM_BUFFER", 16),
	}
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		cfg.listenAddr = ":" + val
	} else if val, ok := os.LookupEnv("PORT"); ok {
		cfg.listenAddr = ":" + val
	}

	switch cfg.backend {
	case "memory", "badger":
	case "redis":
		if cfg.redisConn == "" {
			log.Fatal("missing REDIS_CONNECTION_STRING for redis backend")
		}
	case "tables":
		if cfg.storageConn == "" {
			log.Fatal("missing STORAGE_CONNECTION_STRING for tables backend")
		}
	default:
		log.Fatalf("invalid STORAGE_BACKEND: %q", cfg.backend)
	}
	if cfg.activityQueue != "" && cfg.storageConn == "" {
		log.Fatal("ACTIVITY_QUEUE requires STORAGE_CONNECTION_STRING")
	}
	if cfg.jwtSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set; using an insecure development secret")
		cfg.jwtSecret = "momentum-dev-secret"
	}
	return cfg
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", name, err)
	}
	if n <= 0 {
		log.Fatalf("invalid %s: must be greater than zero", name)
	}
	return n
}

func envDur(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %v", name, err)
	}
	return d
}

func envBool(name string) bool {
	b, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && b
}

// redisOptions accepts a redis:// URL or the Azure style
// "host:port,password=...,ssl=true" connection string.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
