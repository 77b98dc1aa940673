package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gogotex/gogotex/backend/go-resources/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Keycloak  KeycloakConfig
	Resources ResourcesConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig is optional: with an empty URI the service runs on the
// in-memory store.
type MongoDBConfig struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxAttempts int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type KeycloakConfig struct {
	URL           string
	Realm         string
	ClientID      string
	AllowInsecure bool
}

// ResourcesConfig lists the collections exposed over REST and the joins
// between them.
type ResourcesConfig struct {
	Collections []string
	Joins       []JoinConfig
	// ProtectWrites puts post/put/delete behind the bearer-token middleware
	// when a verifier is available.
	ProtectWrites bool
}

// JoinConfig binds Collection's join/member routes to the documents of Member
// whose Column holds the Collection document's id.
type JoinConfig struct {
	Collection string
	Member     string
	Column     string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5020")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("MONGODB_DATABASE", "gogotex")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MONGODB_MAX_ATTEMPTS", 5)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("ALLOW_INSECURE_TOKEN", false)
	v.SetDefault("RESOURCE_COLLECTIONS", "items,parts")
	v.SetDefault("RESOURCE_JOINS", "items:parts:itemId")
	v.SetDefault("RESOURCE_PROTECT_WRITES", true)

	joins, err := ParseJoins(v.GetString("RESOURCE_JOINS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:         v.GetString("MONGODB_URI"),
			Database:    v.GetString("MONGODB_DATABASE"),
			Timeout:     time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
			MaxAttempts: v.GetInt("MONGODB_MAX_ATTEMPTS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Keycloak: KeycloakConfig{
			URL:           v.GetString("KEYCLOAK_URL"),
			Realm:         v.GetString("KEYCLOAK_REALM"),
			ClientID:      v.GetString("KEYCLOAK_CLIENT_ID"),
			AllowInsecure: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		Resources: ResourcesConfig{
			Collections:   SplitList(v.GetString("RESOURCE_COLLECTIONS")),
			Joins:         joins,
			ProtectWrites: v.GetBool("RESOURCE_PROTECT_WRITES"),
		},
	}

	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI is not set; documents are kept in memory only")
	}
	if cfg.Resources.Has(SearchPrefix) {
		return nil, fmt.Errorf("RESOURCE_COLLECTIONS: %q is reserved for search routes", SearchPrefix)
	}
	for _, j := range cfg.Resources.Joins {
		if !cfg.Resources.Has(j.Collection) {
			return nil, fmt.Errorf("join %s:%s:%s: collection %q is not listed in RESOURCE_COLLECTIONS", j.Collection, j.Member, j.Column, j.Collection)
		}
	}

	return cfg, nil
}

// SearchPrefix is the path segment search routes live under.
const SearchPrefix = "search"

// Has reports whether name is one of the exposed collections.
func (r ResourcesConfig) Has(name string) bool {
	for _, c := range r.Collections {
		if c == name {
			return true
		}
	}
	return false
}

// JoinsFor returns the joins declared for collection.
func (r ResourcesConfig) JoinsFor(collection string) []JoinConfig {
	var out []JoinConfig
	for _, j := range r.Joins {
		if j.Collection == collection {
			out = append(out, j)
		}
	}
	return out
}

// ParseJoins parses a comma separated list of collection:member:column triples.
func ParseJoins(s string) ([]JoinConfig, error) {
	var out []JoinConfig
	for _, item := range SplitList(s) {
		parts := strings.Split(item, ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid join %q: want collection:member:column", item)
		}
		out = append(out, JoinConfig{Collection: parts[0], Member: parts[1], Column: parts[2]})
	}
	return out, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
