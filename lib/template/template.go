package template

import (
	"context"
	"errors"
	"io"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/ValentinKolb/kvt/lib/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("template")

var (
	// ErrNilKey is returned when a nil key is passed to an operation
	ErrNilKey = errors.New("non nil key required")
	// ErrNilHashKey is returned when a nil hash key is passed to a hash operation
	ErrNilHashKey = errors.New("non nil hash key required")
)

// Config holds the serializers of a template. Slots left nil default to the GOB serializer.
type Config[K any, V any, HK comparable, HV any] struct {
	// Name labels the template's metrics, defaults to "default"
	Name string

	KeySerializer       serializer.IRedisSerializer[K]
	ValueSerializer     serializer.IRedisSerializer[V]
	HashKeySerializer   serializer.IRedisSerializer[HK]
	HashValueSerializer serializer.IRedisSerializer[HV]
}

// Template maps typed keys and values onto the byte level commands of a connection.
// K and V are the key and value types, HK and HV the field and value types of hashes.
//
// A template is immutable after creation and safe for concurrent use.
type Template[K any, V any, HK comparable, HV any] struct {
	executor
	keySerializer       serializer.IRedisSerializer[K]
	valueSerializer     serializer.IRedisSerializer[V]
	hashKeySerializer   serializer.IRedisSerializer[HK]
	hashValueSerializer serializer.IRedisSerializer[HV]
}

// New creates a new template executing its commands on connections from factory
func New[K any, V any, HK comparable, HV any](factory connection.IConnectionFactory, config Config[K, V, HK, HV]) *Template[K, V, HK, HV] {
	t := &Template[K, V, HK, HV]{
		executor: executor{
			name:    config.Name,
			factory: factory,
			metrics: metrics.NewSet(),
		},
		keySerializer:       config.KeySerializer,
		valueSerializer:     config.ValueSerializer,
		hashKeySerializer:   config.HashKeySerializer,
		hashValueSerializer: config.HashValueSerializer,
	}
	if t.name == "" {
		t.name = "default"
	}
	if t.keySerializer == nil {
		t.keySerializer = serializer.NewGOBSerializer[K]()
	}
	if t.valueSerializer == nil {
		t.valueSerializer = serializer.NewGOBSerializer[V]()
	}
	if t.hashKeySerializer == nil {
		t.hashKeySerializer = serializer.NewGOBSerializer[HK]()
	}
	if t.hashValueSerializer == nil {
		t.hashValueSerializer = serializer.NewGOBSerializer[HV]()
	}
	return t
}

// StringTemplate is a template for string keys, values, hash keys and hash values
type StringTemplate = Template[string, string, string, string]

// NewStringTemplate creates a template storing all strings as their UTF-8 bytes
func NewStringTemplate(factory connection.IConnectionFactory) *StringTemplate {
	s := serializer.NewStringSerializer()
	return New[string, string, string, string](factory, Config[string, string, string, string]{
		Name:                "string",
		KeySerializer:       s,
		ValueSerializer:     s,
		HashKeySerializer:   s,
		HashValueSerializer: s,
	})
}

// --------------------------------------------------------------------------
// Serializer accessors
// --------------------------------------------------------------------------

func (t *Template[K, V, HK, HV]) KeySerializer() serializer.IRedisSerializer[K] {
	return t.keySerializer
}

func (t *Template[K, V, HK, HV]) ValueSerializer() serializer.IRedisSerializer[V] {
	return t.valueSerializer
}

func (t *Template[K, V, HK, HV]) HashKeySerializer() serializer.IRedisSerializer[HK] {
	return t.hashKeySerializer
}

func (t *Template[K, V, HK, HV]) HashValueSerializer() serializer.IRedisSerializer[HV] {
	return t.hashValueSerializer
}

// --------------------------------------------------------------------------
// Facades
// --------------------------------------------------------------------------

// OpsForList returns the list operations of this template
func (t *Template[K, V, HK, HV]) OpsForList() IListOperations[K, V] {
	return &listOperations[K, V, HK, HV]{operations[K, V, HK, HV]{t}}
}

// OpsForSet returns the set operations of this template
func (t *Template[K, V, HK, HV]) OpsForSet() ISetOperations[K, V] {
	return &setOperations[K, V, HK, HV]{operations[K, V, HK, HV]{t}}
}

// OpsForHash returns the hash operations of this template
func (t *Template[K, V, HK, HV]) OpsForHash() IHashOperations[K, HK, HV] {
	return &hashOperations[K, V, HK, HV]{operations[K, V, HK, HV]{t}}
}

// OpsForZSet returns the sorted set operations of this template
func (t *Template[K, V, HK, HV]) OpsForZSet() IZSetOperations[K, V] {
	return &zsetOperations[K, V, HK, HV]{operations[K, V, HK, HV]{t}}
}

// OpsForValue returns the plain value operations of this template
func (t *Template[K, V, HK, HV]) OpsForValue() IValueOperations[K, V] {
	return &valueOperations[K, V, HK, HV]{operations[K, V, HK, HV]{t}}
}

// --------------------------------------------------------------------------
// Key operations
// --------------------------------------------------------------------------

// Delete removes the given keys and returns the number of keys that existed
func (t *Template[K, V, HK, HV]) Delete(ctx context.Context, keys ...K) (int64, error) {
	o := operations[K, V, HK, HV]{t}
	rawKeys, err := o.rawKeyList(keys)
	if err != nil {
		return 0, err
	}
	return execute(ctx, &t.executor, connection.CmdDel, func(conn connection.IConnection) (int64, error) {
		return conn.Del(ctx, rawKeys...)
	})
}

// HasKey reports whether key exists
func (t *Template[K, V, HK, HV]) HasKey(ctx context.Context, key K) (bool, error) {
	rawKey, err := operations[K, V, HK, HV]{t}.rawKey(key)
	if err != nil {
		return false, err
	}
	return execute(ctx, &t.executor, connection.CmdExists, func(conn connection.IConnection) (bool, error) {
		return conn.Exists(ctx, rawKey)
	})
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// WritePrometheus writes the command metrics of this template in Prometheus text format
func (t *Template[K, V, HK, HV]) WritePrometheus(w io.Writer) {
	t.metrics.WritePrometheus(w)
}

// Name returns the metrics label of this template
func (t *Template[K, V, HK, HV]) Name() string {
	return t.name
}
