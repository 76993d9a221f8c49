package models

import "time"

// -----------------------------------------------------------------------------

// MConfig is the full YAML-backed application configuration.
type MConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Stream      MStreamConfig      `yaml:"stream"`
	Market      MMarketConfig      `yaml:"market"`
	Synthesizer MSynthesizerConfig `yaml:"synthesizer"`
	Providers   []*MProviderConfig `yaml:"providers"`
	NATS        MNATSConfig        `yaml:"nats"`
	Redis       MRedisConfig       `yaml:"redis"`
}

// -----------------------------------------------------------------------------

// MStreamConfig controls the per-subscriber tick loop.
type MStreamConfig struct {
	// TickInterval is the period between outbound batches for one subscriber.
	TickInterval time.Duration `yaml:"tick_interval"`
	// SendBuffer is the per-connection outbound message buffer. A full
	// buffer counts as a non-writable transport, never unbounded buffering.
	SendBuffer int `yaml:"send_buffer"`
}

// -----------------------------------------------------------------------------

// MMarketConfig holds trading-session behavior toggles.
type MMarketConfig struct {
	// ExtendedHours keeps the full provider chain active outside regular
	// trading hours instead of short-circuiting to the off-hours provider.
	ExtendedHours bool `yaml:"extended_hours"`
}

// -----------------------------------------------------------------------------

// MSynthesizerConfig parameterizes the synthetic random walk.
type MSynthesizerConfig struct {
	// SeedPrice is used the first time a symbol is synthesized, since no
	// real price is known at that point.
	SeedPrice float64 `yaml:"seed_price"`
	// Volatility bounds the relative size of a single synthetic step.
	Volatility float64 `yaml:"volatility"`
	// Momentum is the probability that a step continues the prior
	// direction (the complement applies when the last change was down).
	Momentum float64 `yaml:"momentum"`
}

// -----------------------------------------------------------------------------

// MProviderConfig describes one upstream market-data vendor.
type MProviderConfig struct {
	Name     string        `yaml:"name"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Priority int           `yaml:"priority"`
	Timeout  time.Duration `yaml:"timeout"`
	Disabled bool          `yaml:"disabled"`
	// OffHours marks the provider the resolver short-circuits to when the
	// market is closed (typically the free, unauthenticated feed).
	OffHours bool `yaml:"off_hours"`
}

// -----------------------------------------------------------------------------

// MNATSConfig configures the outbound batch bus. An empty server list
// disables publishing entirely.
type MNATSConfig struct {
	Servers        []string          `yaml:"servers"`
	ClientID       string            `yaml:"client_id"`
	SubjectPrefix  string            `yaml:"subject_prefix"`
	// Serializer selects the payload encoding: "json" (default) or "binary".
	Serializer     string            `yaml:"serializer"`
	ConnectTimeout time.Duration     `yaml:"connect_timeout"`
	ReconnectWait  time.Duration     `yaml:"reconnect_wait"`
	MaxReconnects  int               `yaml:"max_reconnects"`
	JetStream      *MJetStreamConfig `yaml:"jetstream"`
}

// -----------------------------------------------------------------------------

// MJetStreamConfig enables persistent publishing instead of fire-and-forget.
type MJetStreamConfig struct {
	Enabled    bool          `yaml:"enabled"`
	StreamName string        `yaml:"stream_name"`
	Subjects   []string      `yaml:"subjects"`
	MaxAge     time.Duration `yaml:"max_age"`
	MaxMsgs    int64         `yaml:"max_msgs"`
}

// -----------------------------------------------------------------------------

// MRedisConfig configures the quote snapshot store. An empty address falls
// back to the in-memory store.
type MRedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}
