package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/kvt/lib/common"
	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/ValentinKolb/kvt/lib/connection/goredis"
	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/ValentinKolb/kvt/lib/serializer"
	"github.com/ValentinKolb/kvt/lib/template"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the backend and serializer flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	d := common.DefaultClientConfig()
	serializers := "string, " + strings.Join(serializer.Names(), ", ")

	key := "backend"
	cmd.PersistentFlags().String(key, string(d.Backend), WrapString("The backend to run commands on (redis, memory)"))

	key = "memory-file"
	cmd.PersistentFlags().String(key, "", WrapString("Snapshot file of the memory backend. It is loaded before and saved after every command. Empty disables persistence"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, strings.Join(d.Endpoints, ","), WrapString("The address of the redis server. Multiple endpoints can be specified as a comma-separated list for cluster or sentinel setups"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("The password of the redis server"))

	key = "db"
	cmd.PersistentFlags().Int(key, d.DB, WrapString("The database index to select"))

	key = "protocol"
	cmd.PersistentFlags().Int(key, d.Protocol, WrapString("The RESP protocol version (2 or 3)"))

	key = "timeout"
	cmd.PersistentFlags().Duration(key, d.Timeout, WrapString("Dial, read and write timeout of the client"))

	key = "pool-size"
	cmd.PersistentFlags().Int(key, d.PoolSize, WrapString("Maximum number of connections per endpoint"))

	key = "key-serializer"
	cmd.PersistentFlags().String(key, d.KeySerializer, WrapString("Serializer for keys ("+serializers+")"))

	key = "value-serializer"
	cmd.PersistentFlags().String(key, d.ValueSerializer, WrapString("Serializer for values ("+serializers+")"))

	key = "hash-key-serializer"
	cmd.PersistentFlags().String(key, d.HashKeySerializer, WrapString("Serializer for hash keys ("+serializers+")"))

	key = "hash-value-serializer"
	cmd.PersistentFlags().String(key, d.HashValueSerializer, WrapString("Serializer for hash values ("+serializers+")"))

	key = "log-level"
	cmd.PersistentFlags().String(key, d.LogLevel, WrapString("Log level (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the command metrics in Prometheus format to stderr after the command finished"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("kvt")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		Backend:             common.Backend(strings.ToLower(viper.GetString("backend"))),
		Endpoints:           splitList(viper.GetString("endpoints")),
		Password:            viper.GetString("password"),
		DB:                  viper.GetInt("db"),
		Protocol:            viper.GetInt("protocol"),
		Timeout:             viper.GetDuration("timeout"),
		PoolSize:            viper.GetInt("pool-size"),
		MemoryFile:          viper.GetString("memory-file"),
		KeySerializer:       viper.GetString("key-serializer"),
		ValueSerializer:     viper.GetString("value-serializer"),
		HashKeySerializer:   viper.GetString("hash-key-serializer"),
		HashValueSerializer: viper.GetString("hash-value-serializer"),
		LogLevel:            viper.GetString("log-level"),
	}
	return conf
}

// GetSerializer resolves a serializer for the string arguments of the CLI.
// "string" stores the UTF-8 bytes, every other name encodes the string with that format.
func GetSerializer(name string) (serializer.IRedisSerializer[string], error) {
	if strings.EqualFold(strings.TrimSpace(name), "string") {
		return serializer.NewStringSerializer(), nil
	}
	return serializer.ByName[string](name)
}

// Client bundles the connection factory and the template used by the CLI commands
type Client struct {
	Config   *common.ClientConfig
	Factory  connection.IConnectionFactory
	Template *template.StringTemplate

	memory *memory.ConnectionFactory
	redis  *goredis.ConnectionFactory
}

// NewClient builds the connection factory and template described by config.
// The memory backend loads its snapshot file if one is configured.
func NewClient(config *common.ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{Config: config}
	switch config.Backend {
	case common.BackendMemory:
		c.memory = memory.NewConnectionFactory()
		if config.MemoryFile != "" {
			if err := c.memory.LoadFile(config.MemoryFile); err != nil {
				return nil, err
			}
		}
		c.Factory = c.memory
	default:
		f, err := goredis.NewConnectionFactoryFromConfig(*config)
		if err != nil {
			return nil, err
		}
		c.redis = f
		c.Factory = f
	}

	tpl, err := newTemplate(c.Factory, config)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Template = tpl
	return c, nil
}

// Close persists the memory backend and releases the redis client
func (c *Client) Close() error {
	if c.memory != nil && c.Config.MemoryFile != "" {
		if err := c.memory.SaveFile(c.Config.MemoryFile); err != nil {
			return err
		}
	}
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func newTemplate(factory connection.IConnectionFactory, config *common.ClientConfig) (*template.StringTemplate, error) {
	keys, err := GetSerializer(config.KeySerializer)
	if err != nil {
		return nil, fmt.Errorf("key serializer: %w", err)
	}
	values, err := GetSerializer(config.ValueSerializer)
	if err != nil {
		return nil, fmt.Errorf("value serializer: %w", err)
	}
	hashKeys, err := GetSerializer(config.HashKeySerializer)
	if err != nil {
		return nil, fmt.Errorf("hash key serializer: %w", err)
	}
	hashValues, err := GetSerializer(config.HashValueSerializer)
	if err != nil {
		return nil, fmt.Errorf("hash value serializer: %w", err)
	}
	return template.New(factory, template.Config[string, string, string, string]{
		Name:                "cli",
		KeySerializer:       keys,
		ValueSerializer:     values,
		HashKeySerializer:   hashKeys,
		HashValueSerializer: hashValues,
	}), nil
}

// ParseTimeout parses a blocking timeout given as a duration ("1.5s") or as whole seconds ("2")
func ParseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
