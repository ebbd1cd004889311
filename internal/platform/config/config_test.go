package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		CoinDenom:       "LLC",
		SettlementDenom: "STL",
		CoinRate:        10,
		EggPrice:        100,
		EggsOnSale:      3,
		HatchDelay:      time.Hour,
	}
}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero coin rate", func(c *Config) { c.CoinRate = 0 }},
		{"negative coin rate", func(c *Config) { c.CoinRate = -1 }},
		{"zero egg price", func(c *Config) { c.EggPrice = 0 }},
		{"too few eggs on sale", func(c *Config) { c.EggsOnSale = 2 }},
		{"negative hatch delay", func(c *Config) { c.HatchDelay = -time.Second }},
		{"colliding denoms", func(c *Config) { c.SettlementDenom = "LLC" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "LLC", cfg.CoinDenom)
	assert.Equal(t, int64(10), cfg.CoinRate)
	assert.Equal(t, 24*time.Hour, cfg.HatchDelay)
}
