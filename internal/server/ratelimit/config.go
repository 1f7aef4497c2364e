package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint.
type Rule struct {
	Method string
	Path   string
	Limit  int           // Requests per Window
	Window time.Duration // Window over which Limit refills
	Burst  int           // Burst capacity (defaults to 1 if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled   bool
	Rules     []Rule
	Whitelist map[string]bool
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL time.Duration
}

// Defaults for batch endpoints. Every batch fans out into many LLM calls.
const (
	DefaultBatchesPerHour = 20
	DefaultBurst          = 2
	DefaultIdleTTL        = time.Hour
)

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	perHour := getEnvInt("RATE_LIMIT_BATCHES_PER_HOUR", DefaultBatchesPerHour)
	burst := getEnvInt("RATE_LIMIT_BURST", DefaultBurst)
	return &Config{
		Enabled:   true,
		Rules:     DefaultRules(perHour, burst),
		Whitelist: parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		IdleTTL:   DefaultIdleTTL,
	}
}

// DefaultRules limits the endpoints that start perturbation batches.
// Variant generation, reads and health checks are not limited.
func DefaultRules(perHour, burst int) []Rule {
	return []Rule{
		{Method: http.MethodPost, Path: "/perturbation/run", Limit: perHour, Window: time.Hour, Burst: burst},
		{Method: http.MethodPost, Path: "/perturbation/run/stream", Limit: perHour, Window: time.Hour, Burst: burst},
	}
}

// Match returns the rule for a request, or nil when it is unlimited.
func (c *Config) Match(method, path string) *Rule {
	for i := range c.Rules {
		if c.Rules[i].Method == method && c.Rules[i].Path == path {
			return &c.Rules[i]
		}
	}
	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
