// Package timeouts provides centralized timeout values for handler operations.
package timeouts

import (
	"os"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single-document reads and writes.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for list queries and multi-step updates.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for uploads and content synchronisation.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

// Config holds timeout configuration values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure overrides the non-zero values of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	apply(&cur.Ping, cfg.Ping)
	apply(&cur.Short, cfg.Short)
	apply(&cur.Medium, cfg.Medium)
	apply(&cur.Long, cfg.Long)
}

func apply(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// EnvPrefix is prepended to the TIMEOUT_* variable names.
const EnvPrefix = "STRATASITE_"

// ConfigureFromEnv reads STRATASITE_TIMEOUT_{PING,SHORT,MEDIUM,LONG}.
// Values are Go durations ("750ms", "15s") or whole seconds ("15").
// It returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	configured := 0
	for name, dst := range map[string]*time.Duration{
		"PING":   &cfg.Ping,
		"SHORT":  &cfg.Short,
		"MEDIUM": &cfg.Medium,
		"LONG":   &cfg.Long,
	} {
		v := os.Getenv(EnvPrefix + "TIMEOUT_" + name)
		if v == "" {
			continue
		}
		d, err := parse(v)
		if err != nil || d <= 0 {
			continue
		}
		*dst = d
		configured++
	}
	Configure(cfg)
	return configured
}

func parse(v string) (time.Duration, error) {
	if n, err := cast.ToInt64E(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return cast.ToDurationE(v)
}
