package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the engine needs at startup. Construction
// parameter validation happens once here; a bad value is fatal at setup time,
// never at operation time.
type Config struct {
	Addr          string
	JWTSigningKey string

	CoinDenom       string
	SettlementDenom string

	// CoinRate is how many settlement units buy one coin.
	CoinRate int64
	// HatchDelay is added to mint time to produce a person's birth date.
	HatchDelay time.Duration
	// EggsOnSale caps the primary person sale.
	EggsOnSale int64
	// EggPrice is the primary sale price in settlement units.
	EggPrice int64

	IncubationImageRef string

	// AllowOffLedgerRent lets rent/terminate-rent target object ids that were
	// never minted, skipping registry checks but still emitting events.
	AllowOffLedgerRent bool

	CatalogSeedPath string

	PostgresURL string

	Redis          RedisConfig
	ChoiceCacheTTL time.Duration

	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig carries connection settings for the platform redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Returns an error for invalid construction parameters.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:               envOr("LIFELEDGER_ADDR", ":8080"),
		JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		CoinDenom:          envOr("COIN_DENOM", "LLC"),
		SettlementDenom:    envOr("SETTLEMENT_DENOM", "STL"),
		IncubationImageRef: envOr("INCUBATION_IMAGE_REF", "images/incubating.png"),
		AllowOffLedgerRent: os.Getenv("ALLOW_OFFLEDGER_RENT") == "true",
		CatalogSeedPath:    os.Getenv("CATALOG_SEED_PATH"),
		PostgresURL:        os.Getenv("POSTGRES_URL"),
		AuditTopic:         envOr("AUDIT_TOPIC", "lifeledger.audit"),
		ChoiceCacheTTL:     5 * time.Minute,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	var err error
	if cfg.CoinRate, err = envInt64("COIN_RATE", 10); err != nil {
		return Config{}, err
	}
	if cfg.EggPrice, err = envInt64("EGG_PRICE", 100); err != nil {
		return Config{}, err
	}
	if cfg.EggsOnSale, err = envInt64("EGGS_ON_SALE", 10000); err != nil {
		return Config{}, err
	}
	hatchSeconds, err := envInt64("HATCH_DELAY_SECONDS", 86400)
	if err != nil {
		return Config{}, err
	}
	cfg.HatchDelay = time.Duration(hatchSeconds) * time.Second

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the setup-time invariants.
func (c Config) Validate() error {
	if c.CoinRate <= 0 {
		return fmt.Errorf("coin rate must be bigger than zero")
	}
	if c.EggPrice <= 0 {
		return fmt.Errorf("egg price must be bigger than zero")
	}
	if c.EggsOnSale <= 2 {
		return fmt.Errorf("eggs on sale must be bigger than two")
	}
	if c.HatchDelay < 0 {
		return fmt.Errorf("hatch delay can't be negative")
	}
	if c.CoinDenom == c.SettlementDenom {
		return fmt.Errorf("coin and settlement denominations must differ")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
