// Package config reads process configuration from PILL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/calvinmclean/pilldispenser"
)

// StoreBackend selects where the schedule is persisted
type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreRedis  StoreBackend = "redis"
	StoreMemory StoreBackend = "memory"
)

// ServoBackend selects the PWM output
type ServoBackend string

const (
	ServoSerial ServoBackend = "serial"
	ServoSim    ServoBackend = "sim"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	Layout      pilldispenser.Layout

	StoreBackend  StoreBackend
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTimeout   time.Duration

	ServoBackend ServoBackend
	SerialPort   string // empty picks the first USB serial device
	SerialBaud   int
	MoveSettle   time.Duration
	DropSettle   time.Duration

	NetInterface string // empty skips the link check
	NetMaxRetry  int
}

// Load reads an optional .env file and then the environment, applies defaults, and validates the result.
func Load() (*Config, error) {
	err := godotenv.Load(getEnv("PILL_ENV_FILE", ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file: %w", err)
	}

	layout, err := pilldispenser.LayoutByName(getEnv("PILL_LAYOUT", "weekday"))
	if err != nil {
		return nil, err
	}

	var env envParser
	cfg := &Config{
		Environment: getEnv("PILL_ENV", "production"),
		HTTPBind:    getEnv("PILL_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    env.getEnvInt("PILL_HTTP_PORT", 80),
		Layout:      layout,

		StoreBackend:  StoreBackend(strings.ToLower(getEnv("PILL_STORE_BACKEND", string(StoreSQLite)))),
		StorePath:     getEnv("PILL_STORE_PATH", "pilldispenser.db"),
		RedisAddr:     getEnv("PILL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("PILL_REDIS_PASSWORD", ""),
		RedisDB:       env.getEnvInt("PILL_REDIS_DB", 0),
		LockTimeout:   env.getEnvMillis("PILL_LOCK_TIMEOUT_MS", 100*time.Millisecond),

		ServoBackend: ServoBackend(strings.ToLower(getEnv("PILL_SERVO_BACKEND", string(ServoSerial)))),
		SerialPort:   getEnv("PILL_SERIAL_PORT", ""),
		SerialBaud:   env.getEnvInt("PILL_SERIAL_BAUD", 115200),
		MoveSettle:   env.getEnvMillis("PILL_MOVE_SETTLE_MS", 300*time.Millisecond),
		DropSettle:   env.getEnvMillis("PILL_DROP_SETTLE_MS", 500*time.Millisecond),

		NetInterface: getEnv("PILL_NET_INTERFACE", ""),
		NetMaxRetry:  env.getEnvInt("PILL_NET_MAX_RETRY", 5),
	}

	if err := env.err(); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	switch cfg.ServoBackend {
	case ServoSerial, ServoSim:
	default:
		return nil, fmt.Errorf("unsupported servo backend %q", cfg.ServoBackend)
	}

	if cfg.StoreBackend == StoreSQLite && cfg.StorePath == "" {
		return nil, errors.New("PILL_STORE_PATH must be provided for the sqlite backend")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid PILL_HTTP_PORT %d", cfg.HTTPPort)
	}

	if cfg.NetMaxRetry < 0 {
		return nil, fmt.Errorf("invalid PILL_NET_MAX_RETRY %d", cfg.NetMaxRetry)
	}

	return cfg, nil
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// envParser collects every malformed value so a misconfigured device reports all of them at once
type envParser struct {
	errs []error
}

func (p *envParser) getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: expected an integer", key, val))
		return def
	}
	return parsed
}

func (p *envParser) getEnvMillis(key string, def time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return def
	}

	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: expected milliseconds >= 0", key, val))
		return def
	}
	return time.Duration(parsed) * time.Millisecond
}

func (p *envParser) err() error {
	return errors.Join(p.errs...)
}
