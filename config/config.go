package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"coinrush/auth"
	"coinrush/game"
	"coinrush/protocol"
)

const (
	ModeServer = "server"
	ModeClient = "client"
)

const (
	DriverNone     = ""
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Mode string

	ServerAddr string // game listener
	APIAddr    string // optional API-only listener
	ServerURL  string // client dial target

	Key        auth.Key
	ProtocolID uint64
	ClientID   uint64 // 0 picks the current unix millis at startup
	TokenTTL   time.Duration

	SendInterval time.Duration
	Tuning       game.Tuning
	PurgeScores  bool

	DBDriver string
	DBDSN    string

	LogFile    string
	HoldWindow time.Duration
	Sound      bool
}

// InitConfig loads envFile into the process environment. A missing file is not an error.
func InitConfig(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	log.Printf("Successfully loaded environment variables from %s", envFile)
	return nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var err error
	cfg := &Config{
		Mode:       getEnv("COINRUSH_MODE", ModeClient),
		ServerAddr: getEnv("COINRUSH_SERVER_ADDR", ":5001"),
		APIAddr:    getEnv("COINRUSH_API_ADDR", ""),
		ServerURL:  getEnv("COINRUSH_SERVER_URL", "ws://127.0.0.1:5001/ws"),
		DBDriver:   getEnv("COINRUSH_DB_DRIVER", DriverNone),
		DBDSN:      getEnv("COINRUSH_DB_DSN", "coinrush.db"),
		LogFile:    getEnv("COINRUSH_LOG_FILE", "coinrush-client.log"),
		Tuning:     game.DefaultTuning(),
	}

	if cfg.Key, err = auth.ParseKey(getEnv("COINRUSH_KEY", "")); err != nil {
		return nil, fmt.Errorf("COINRUSH_KEY: %w", err)
	}
	if cfg.ProtocolID, err = getUint("COINRUSH_PROTOCOL_ID", 0); err != nil {
		return nil, err
	}
	if cfg.ClientID, err = getUint("COINRUSH_CLIENT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("COINRUSH_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SendInterval, err = getDuration("COINRUSH_SEND_INTERVAL", protocol.ServerSendInterval); err != nil {
		return nil, err
	}
	if cfg.HoldWindow, err = getDuration("COINRUSH_HOLD_WINDOW", 150*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Sound, err = getBool("COINRUSH_SOUND", true); err != nil {
		return nil, err
	}

	t := &cfg.Tuning
	if t.PlayerRadius, err = getFloat32("COINRUSH_PLAYER_RADIUS", t.PlayerRadius); err != nil {
		return nil, err
	}
	if t.CoinRadius, err = getFloat32("COINRUSH_COIN_RADIUS", t.CoinRadius); err != nil {
		return nil, err
	}
	if t.SpawnWidth, err = getInt("COINRUSH_SPAWN_WIDTH", t.SpawnWidth); err != nil {
		return nil, err
	}
	if t.SpawnHeight, err = getInt("COINRUSH_SPAWN_HEIGHT", t.SpawnHeight); err != nil {
		return nil, err
	}
	if t.InitialCoins, err = getInt("COINRUSH_INITIAL_COINS", t.InitialCoins); err != nil {
		return nil, err
	}

	switch policy := getEnv("COINRUSH_SCORE_ON_DISCONNECT", "purge"); policy {
	case "purge":
		cfg.PurgeScores = true
	case "retain":
		cfg.PurgeScores = false
	default:
		return nil, fmt.Errorf("COINRUSH_SCORE_ON_DISCONNECT: unknown policy %q", policy)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeServer, ModeClient:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.DBDriver {
	case DriverNone, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown db driver %q", c.DBDriver)
	}
	if c.SendInterval <= 0 {
		return fmt.Errorf("send interval must be positive, got %v", c.SendInterval)
	}
	if c.Tuning.SpawnWidth <= 0 || c.Tuning.SpawnHeight <= 0 {
		return fmt.Errorf("spawn bounds must be positive, got %dx%d", c.Tuning.SpawnWidth, c.Tuning.SpawnHeight)
	}
	if c.Tuning.PlayerRadius < 0 || c.Tuning.CoinRadius < 0 {
		return fmt.Errorf("radii must not be negative")
	}
	return nil
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getUint(key string, def uint64) (uint64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat32(key string, def float32) (float32, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return float32(f), nil
}

func getBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
