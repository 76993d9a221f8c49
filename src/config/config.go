package config

import (
	"fmt"
	"os"
	"time"

	"market-streamer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Defaults applied to fields the YAML file leaves unset.
const (
	DefaultTickInterval    = time.Second
	DefaultSendBuffer      = 64
	DefaultProviderTimeout = 3 * time.Second
	DefaultSeedPrice       = 100.0
	DefaultVolatility      = 0.02
	DefaultMomentum        = 0.6
	DefaultSnapshotTTL     = 24 * time.Hour
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods.
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Expand ${VAR} references so API keys stay out of the file,
	// then unmarshal into the models struct
	expanded := os.ExpandEnv(string(data))

	var modelConfig models.MConfig
	if err := yaml.Unmarshal([]byte(expanded), &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// NewFromModel wraps an in-memory model config, applying the same defaults
// and validation as the file path. Used by tests and embedders.
func NewFromModel(modelConfig *models.MConfig) (*Config, error) {
	config := &Config{MConfig: modelConfig}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset fields so the rest of the system never has to
// guard against zero values.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "market-streamer"
	}
	if c.Stream.TickInterval <= 0 {
		c.Stream.TickInterval = DefaultTickInterval
	}
	if c.Stream.SendBuffer <= 0 {
		c.Stream.SendBuffer = DefaultSendBuffer
	}
	if c.Synthesizer.SeedPrice <= 0 {
		c.Synthesizer.SeedPrice = DefaultSeedPrice
	}
	if c.Synthesizer.Volatility <= 0 {
		c.Synthesizer.Volatility = DefaultVolatility
	}
	if c.Synthesizer.Momentum <= 0 || c.Synthesizer.Momentum >= 1 {
		c.Synthesizer.Momentum = DefaultMomentum
	}
	if c.Redis.SnapshotTTL <= 0 {
		c.Redis.SnapshotTTL = DefaultSnapshotTTL
	}
	for _, provider := range c.Providers {
		if provider.Timeout <= 0 {
			provider.Timeout = DefaultProviderTimeout
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation and checks the provider
// sub-configs. A run with zero providers is valid: every quote is then
// synthesized.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name cannot be empty")
	}

	if c.Port != 0 && (c.Port <= 1024 || c.Port > 65535) {
		return fmt.Errorf("invalid application port number: %d (must be between 1025 and 65535)", c.Port)
	}

	seen := make(map[string]bool, len(c.Providers))
	offHours := 0
	for i, provider := range c.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider %d: name cannot be empty", i)
		}
		if seen[provider.Name] {
			return fmt.Errorf("provider '%s': configured more than once", provider.Name)
		}
		seen[provider.Name] = true
		if provider.Endpoint == "" {
			return fmt.Errorf("provider '%s': endpoint cannot be empty", provider.Name)
		}
		if provider.OffHours {
			offHours++
		}
	}
	if offHours > 1 {
		return fmt.Errorf("at most one provider may be marked off_hours, got %d", offHours)
	}

	return nil
}

// -----------------------------------------------------------------------------

// ListenAddr is the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	port := c.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// -----------------------------------------------------------------------------

// GetProviderByName returns a single provider config by name.
func (c *Config) GetProviderByName(name string) *models.MProviderConfig {
	for _, provider := range c.Providers {
		if provider.Name == name {
			return provider
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// OrderedProviders returns the enabled provider configs sorted by priority
// (best data quality first). Priority is fixed per deployment; there is no
// runtime reordering based on observed latency.
func (c *Config) OrderedProviders() []*models.MProviderConfig {
	ordered := make([]*models.MProviderConfig, 0, len(c.Providers))
	for _, provider := range c.Providers {
		if provider.Disabled {
			continue
		}
		ordered = append(ordered, provider)
	}
	// Insertion sort keeps config order stable for equal priorities.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority < ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
