package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// Backend selects the execution layer used by the templates
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// ClientConfig holds all parameters needed to build a connection factory and the
// serializers of a template.
type ClientConfig struct {
	Backend Backend

	// redis backend
	Endpoints []string
	Password  string
	DB        int
	Protocol  int // 2 or 3
	Timeout   time.Duration
	PoolSize  int

	// memory backend
	MemoryFile string // snapshot file, empty disables persistence

	// serializer names (see serializer.ByName)
	KeySerializer       string
	ValueSerializer     string
	HashKeySerializer   string
	HashValueSerializer string

	// Logging configuration
	LogLevel string
}

// DefaultClientConfig returns the configuration used when nothing is set
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Backend:             BackendRedis,
		Endpoints:           []string{"localhost:6379"},
		Protocol:            3,
		Timeout:             5 * time.Second,
		PoolSize:            10,
		KeySerializer:       "string",
		ValueSerializer:     "gob",
		HashKeySerializer:   "string",
		HashValueSerializer: "gob",
		LogLevel:            "info",
	}
}

// Validate checks the configuration for values no backend can work with
func (c *ClientConfig) Validate() error {
	switch c.Backend {
	case BackendRedis:
		if len(c.Endpoints) == 0 {
			return fmt.Errorf("redis backend needs at least one endpoint")
		}
		if c.Protocol != 2 && c.Protocol != 3 {
			return fmt.Errorf("invalid protocol %d (must be 2 or 3)", c.Protocol)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (must be %s or %s)", c.Backend, BackendRedis, BackendMemory)
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid db index %d", c.DB)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	_, err := ParseLogLevel(c.LogLevel)
	return err
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Backend", string(c.Backend))
	addField("Log Level", c.LogLevel)

	if c.Backend == BackendMemory {
		addSection("Memory Backend")
		file := c.MemoryFile
		if file == "" {
			file = "(not persisted)"
		}
		addField("Snapshot File", file)
	} else {
		addSection("Redis Backend")
		addField("DB", strconv.Itoa(c.DB))
		addField("Protocol", fmt.Sprintf("RESP%d", c.Protocol))
		addField("Timeout", c.Timeout.String())
		addField("Pool Size", strconv.Itoa(c.PoolSize))
		password := "(none)"
		if c.Password != "" {
			password = "********"
		}
		addField("Password", password)

		addSection("Endpoints")
		for i, endpoint := range c.Endpoints {
			addField(strconv.Itoa(i), endpoint)
		}
	}

	addSection("Serializers")
	addField("Key", c.KeySerializer)
	addField("Value", c.ValueSerializer)
	addField("Hash Key", c.HashKeySerializer)
	addField("Hash Value", c.HashValueSerializer)

	return sb.String()
}
