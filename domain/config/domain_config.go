package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Rating constraints
	MinRating float64
	MaxRating float64

	// Route optimization
	DefaultMaxStops   int
	MaxStopsLimit     int
	MaxExpandedStates int
	MaxOptimalRoutes  int
	MaxStopsPerRoute  int
	MaxRouteDuration  time.Duration

	// Spatial search
	MaxNearbyRadiusMeters float64
	MaxNearbyResults      int

	// Location constraints
	MaxNameLength        int
	MaxDescriptionLength int
	MaxTagsPerLocation   int
	MaxImagesPerEntity   int

	// Diary constraints
	MaxDiaryTitleLength   int
	MaxDiaryContentLength int

	// Listing
	DefaultPageSize int
	MaxPageSize     int
	DefaultPopularN int

	// Cache
	CacheTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinRating: 0,
		MaxRating: 5,

		DefaultMaxStops:   5,
		MaxStopsLimit:     20,
		MaxExpandedStates: 100000,
		MaxOptimalRoutes:  5,
		MaxStopsPerRoute:  50,
		MaxRouteDuration:  30 * 24 * time.Hour,

		MaxNearbyRadiusMeters: 20037509, // half the equatorial circumference
		MaxNearbyResults:      500,

		MaxNameLength:        100,
		MaxDescriptionLength: 1000,
		MaxTagsPerLocation:   20,
		MaxImagesPerEntity:   20,

		MaxDiaryTitleLength:   200,
		MaxDiaryContentLength: 50000,

		DefaultPageSize: 20,
		MaxPageSize:     100,
		DefaultPopularN: 10,

		CacheTTL: time.Hour,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxStopsLimit = 10
	config.MaxExpandedStates = 50000
	config.MaxNearbyResults = 200

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxStopsLimit = 50
	config.MaxExpandedStates = 1000000
	config.CacheTTL = 5 * time.Minute

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinRating > c.MaxRating {
		return fmt.Errorf("rating range is empty: [%v, %v]", c.MinRating, c.MaxRating)
	}
	if c.MaxExpandedStates <= 0 {
		return fmt.Errorf("max expanded states must be positive")
	}
	if c.MaxOptimalRoutes <= 0 {
		return fmt.Errorf("max optimal routes must be positive")
	}
	if c.DefaultMaxStops < 0 || c.DefaultMaxStops > c.MaxStopsLimit {
		return fmt.Errorf("default max stops %d outside [0, %d]", c.DefaultMaxStops, c.MaxStopsLimit)
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default page size %d outside [1, %d]", c.DefaultPageSize, c.MaxPageSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}
