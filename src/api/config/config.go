package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN  string
	RedisURL  string
	JWTSecret string
	Port      string

	// Ledger policy switches.
	LockUpdateAfterVotes bool
	EnforceVoteWindow    bool
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("env %s: %v", key, err)
	}
	return b
}

func Load() Config {
	return Config{
		MySQLDSN:             getenv("MYSQL_DSN", "dappvotes:dappvotes@tcp(127.0.0.1:3306)/dappvotes"),
		RedisURL:             getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:            getenv("JWT_SECRET", ""),
		Port:                 getenv("PORT", "8080"),
		LockUpdateAfterVotes: getbool("LOCK_UPDATE_AFTER_VOTES", true),
		EnforceVoteWindow:    getbool("ENFORCE_VOTE_WINDOW", true),
	}
}
