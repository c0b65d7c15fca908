package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDomainConfig(t *testing.T) {
	for _, env := range []string{"production", "development", "staging", ""} {
		t.Run(env, func(t *testing.T) {
			cfg := LoadDomainConfig(env)
			assert.NoError(t, cfg.Validate())
			assert.Equal(t, 0.0, cfg.MinRating)
			assert.Equal(t, 5.0, cfg.MaxRating)
		})
	}
	assert.Equal(t, time.Hour, DefaultDomainConfig().CacheTTL)
}

func TestDomainConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DomainConfig)
	}{
		{"inverted rating range", func(c *DomainConfig) { c.MinRating, c.MaxRating = 5, 0 }},
		{"no state budget", func(c *DomainConfig) { c.MaxExpandedStates = 0 }},
		{"default stops above limit", func(c *DomainConfig) { c.DefaultMaxStops = c.MaxStopsLimit + 1 }},
		{"page size above cap", func(c *DomainConfig) { c.DefaultPageSize = c.MaxPageSize + 1 }},
		{"zero ttl", func(c *DomainConfig) { c.CacheTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
