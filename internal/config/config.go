// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gatekit/ratelimit/internal/core/domain"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Type  string
	Redis RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimitConfig struct {
	Whitelist []string
	Public    domain.Policy
	Auth      domain.Policy
	API       domain.Policy
	Burst     domain.Policy
	Sustained domain.Policy
}

func Load() (Config, error) {
	_ = godotenv.Load()

	server := ServerConfig{Port: getEnv("SERVER_PORT", "8080")}
	logCfg := LogConfig{Level: getEnv("LOG_LEVEL", "info")}

	storageType := getEnv("STORAGE_TYPE", "memory")

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimitConfig, err := buildRateLimitConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: server,
		Log:    logCfg,
		Storage: StorageConfig{
			Type:  storageType,
			Redis: redisConfig,
		},
		RateLimit: rateLimitConfig,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildRateLimitConfig() (RateLimitConfig, error) {
	whitelist := buildWhitelist()

	public, err := overridePolicy(domain.PublicPolicy(), "RATE_LIMIT_PUBLIC")
	if err != nil {
		return RateLimitConfig{}, err
	}
	auth, err := overridePolicy(domain.AuthPolicy(), "RATE_LIMIT_AUTH")
	if err != nil {
		return RateLimitConfig{}, err
	}
	api, err := overridePolicy(domain.APIPolicy(), "RATE_LIMIT_API")
	if err != nil {
		return RateLimitConfig{}, err
	}

	burst, err := overridePolicy(domain.Policy{
		Name:    "burst",
		Window:  time.Second,
		Limit:   20,
		Message: "request burst limit exceeded, please slow down",
	}, "RATE_LIMIT_BURST")
	if err != nil {
		return RateLimitConfig{}, err
	}

	sustained := public
	sustained.Name = "sustained"
	sustained, err = overridePolicy(sustained, "RATE_LIMIT_SUSTAINED")
	if err != nil {
		return RateLimitConfig{}, err
	}

	cfg := RateLimitConfig{
		Whitelist: whitelist,
		Public:    public,
		Auth:      auth,
		API:       api,
		Burst:     burst,
		Sustained: sustained,
	}
	cfg.applyWhitelist()

	return cfg, nil
}

// overridePolicy parte do preset e aplica overrides de ambiente. Políticas
// inválidas são rejeitadas aqui, na carga, nunca em tempo de requisição.
func overridePolicy(policy domain.Policy, prefix string) (domain.Policy, error) {
	if raw := strings.TrimSpace(os.Getenv(prefix + "_REQUESTS")); raw != "" {
		requests, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("invalid %s_REQUESTS: %w", prefix, err)
		}
		policy.Limit = requests
	}

	if raw := strings.TrimSpace(os.Getenv(prefix + "_WINDOW_SECONDS")); raw != "" {
		windowSeconds, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("invalid %s_WINDOW_SECONDS: %w", prefix, err)
		}
		policy.Window = time.Duration(windowSeconds) * time.Second
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, fmt.Errorf("policy %s: %w", prefix, err)
	}

	return policy, nil
}

func buildWhitelist() []string {
	raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_WHITELIST"))
	if raw == "" {
		return nil
	}

	var whitelist []string
	for _, item := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(item); origin != "" {
			whitelist = append(whitelist, origin)
		}
	}
	return whitelist
}

func (c *RateLimitConfig) applyWhitelist() {
	c.Public.Whitelist = c.Whitelist
	c.Auth.Whitelist = c.Whitelist
	c.API.Whitelist = c.Whitelist
	c.Burst.Whitelist = c.Whitelist
	c.Sustained.Whitelist = c.Whitelist
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
