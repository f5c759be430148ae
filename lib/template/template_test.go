package template

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/ValentinKolb/kvt/lib/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// recordingFactory counts borrowed connections and records the timeouts passed to blocking pops
type recordingFactory struct {
	connection.IConnectionFactory
	borrows atomic.Int64

	mu       sync.Mutex
	timeouts []int64
}

func newRecordingFactory() *recordingFactory {
	return &recordingFactory{IConnectionFactory: memory.NewConnectionFactory()}
}

func (f *recordingFactory) GetConnection(ctx context.Context) (connection.IConnection, error) {
	f.borrows.Add(1)
	conn, err := f.IConnectionFactory.GetConnection(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingConnection{IConnection: conn, factory: f}, nil
}

func (f *recordingFactory) recordTimeout(sec int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts = append(f.timeouts, sec)
}

type recordingConnection struct {
	connection.IConnection
	factory *recordingFactory
}

func (c *recordingConnection) BLPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	c.factory.recordTimeout(timeoutSec)
	return c.IConnection.BLPop(ctx, timeoutSec, key)
}

func (c *recordingConnection) BRPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	c.factory.recordTimeout(timeoutSec)
	return c.IConnection.BRPop(ctx, timeoutSec, key)
}

func (c *recordingConnection) BRPopLPush(ctx context.Context, src, dst []byte, timeoutSec int64) ([]byte, error) {
	c.factory.recordTimeout(timeoutSec)
	return c.IConnection.BRPopLPush(ctx, src, dst, timeoutSec)
}

type failingFactory struct{}

func (failingFactory) GetConnection(context.Context) (connection.IConnection, error) {
	return nil, errors.New("connection refused")
}

type failingSerializer[T any] struct{}

var errBroken = errors.New("broken codec")

func (failingSerializer[T]) Serialize(T) ([]byte, error) {
	return nil, &serializer.Error{Format: "BROKEN", Op: "write", Cause: errBroken}
}

func (failingSerializer[T]) Deserialize([]byte) (T, error) {
	var zero T
	return zero, &serializer.Error{Format: "BROKEN", Op: "read", Cause: errBroken}
}

type Person struct {
	Name    string
	Address Address
}

type Address struct {
	Number int
}

// newIntTemplate returns a template with string keys and hash keys and JSON encoded int values
func newIntTemplate(factory connection.IConnectionFactory) *Template[string, int, string, int] {
	return New(factory, Config[string, int, string, int]{
		Name:                "test",
		KeySerializer:       serializer.NewStringSerializer(),
		ValueSerializer:     serializer.NewJSONSerializer[int](),
		HashKeySerializer:   serializer.NewStringSerializer(),
		HashValueSerializer: serializer.NewJSONSerializer[int](),
	})
}

// --------------------------------------------------------------------------
// Template
// --------------------------------------------------------------------------

func TestNewDefaults(t *testing.T) {
	tpl := New(memory.NewConnectionFactory(), Config[string, Person, int, Person]{})

	assert.Equal(t, "default", tpl.Name())

	raw, err := tpl.ValueSerializer().Serialize(Person{Name: "alice"})
	require.NoError(t, err)
	back, err := serializer.NewGOBSerializer[Person]().Deserialize(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", back.Name)

	for _, s := range []any{tpl.KeySerializer(), tpl.HashKeySerializer(), tpl.HashValueSerializer()} {
		assert.NotNil(t, s)
	}
}

func TestNilKeyRejectedBeforeBorrow(t *testing.T) {
	ctx := context.Background()
	factory := newRecordingFactory()
	tpl := New(factory, Config[*string, int, *string, int]{
		KeySerializer:       serializer.NewJSONSerializer[*string](),
		ValueSerializer:     serializer.NewJSONSerializer[int](),
		HashKeySerializer:   serializer.NewJSONSerializer[*string](),
		HashValueSerializer: serializer.NewJSONSerializer[int](),
	})
	key := "k"

	checks := map[string]func() error{
		"Delete":   func() error { _, err := tpl.Delete(ctx, &key, nil); return err },
		"HasKey":   func() error { _, err := tpl.HasKey(ctx, nil); return err },
		"Push":     func() error { _, err := tpl.OpsForList().RightPush(ctx, nil, 1); return err },
		"Pop":      func() error { _, _, err := tpl.OpsForList().LeftPop(ctx, nil); return err },
		"RPopLP":   func() error { _, _, err := tpl.OpsForList().RightPopAndLeftPush(ctx, &key, nil); return err },
		"SAdd":     func() error { _, err := tpl.OpsForSet().Add(ctx, nil, 1); return err },
		"SDiff":    func() error { _, err := tpl.OpsForSet().Difference(ctx, &key, nil); return err },
		"SStore":   func() error { _, err := tpl.OpsForSet().UnionAndStore(ctx, &key, nil, nil); return err },
		"Hash":     func() error { return tpl.OpsForHash().Put(ctx, nil, &key, 1) },
		"ZAdd":     func() error { _, err := tpl.OpsForZSet().Add(ctx, nil, 1, 1); return err },
		"Get":      func() error { _, _, err := tpl.OpsForValue().Get(ctx, nil); return err },
		"MultiGet": func() error { _, err := tpl.OpsForValue().MultiGet(ctx, &key, nil); return err },
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, check(), ErrNilKey)
		})
	}

	hashChecks := map[string]func() error{
		"Put":    func() error { return tpl.OpsForHash().Put(ctx, &key, nil, 1) },
		"Get":    func() error { _, _, err := tpl.OpsForHash().Get(ctx, &key, nil); return err },
		"Delete": func() error { _, err := tpl.OpsForHash().Delete(ctx, &key, &key, nil); return err },
		"PutAll": func() error { return tpl.OpsForHash().PutAll(ctx, &key, map[*string]int{nil: 1}) },
	}
	for name, check := range hashChecks {
		t.Run("Hash"+name, func(t *testing.T) {
			assert.ErrorIs(t, check(), ErrNilHashKey)
		})
	}

	assert.Zero(t, factory.borrows.Load(), "no connection may be borrowed for a nil key")
}

func TestSerializationErrorBeforeBorrow(t *testing.T) {
	factory := newRecordingFactory()
	tpl := New(factory, Config[string, int, string, int]{
		KeySerializer:   serializer.NewStringSerializer(),
		ValueSerializer: failingSerializer[int]{},
	})

	_, err := tpl.OpsForList().RightPush(context.Background(), "list", 1)
	require.Error(t, err)

	var serr *serializer.Error
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, errBroken)
	assert.Zero(t, factory.borrows.Load())
}

func TestDeserializationError(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewConnectionFactory()
	writer := NewStringTemplate(factory)
	reader := New(factory, Config[string, int, string, int]{
		KeySerializer:   serializer.NewStringSerializer(),
		ValueSerializer: failingSerializer[int]{},
	})

	require.NoError(t, writer.OpsForValue().Set(ctx, "k", "v"))

	_, ok, err := reader.OpsForValue().Get(ctx, "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errBroken)
}

func TestConnectionError(t *testing.T) {
	tpl := newIntTemplate(failingFactory{})

	_, err := tpl.OpsForList().Size(context.Background(), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLEN: could not get connection")

	var buf bytes.Buffer
	tpl.WritePrometheus(&buf)
	assert.Contains(t, buf.String(), `kvt_command_errors_total{template="test",command="LLEN"} 1`)
}

func TestRemoteErrorPropagated(t *testing.T) {
	ctx := context.Background()
	tpl := newIntTemplate(memory.NewConnectionFactory())

	_, err := tpl.OpsForList().RightPush(ctx, "list", 1)
	require.NoError(t, err)

	_, _, err = tpl.OpsForValue().Get(ctx, "list")
	assert.ErrorIs(t, err, connection.ErrWrongType)

	var cerr *connection.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, connection.RetCWrongType, cerr.Code)
}

func TestDeleteAndHasKey(t *testing.T) {
	ctx := context.Background()
	tpl := newIntTemplate(memory.NewConnectionFactory())
	values := tpl.OpsForValue()

	require.NoError(t, values.Set(ctx, "a", 1))
	require.NoError(t, values.Set(ctx, "b", 2))

	ok, err := tpl.HasKey(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := tpl.Delete(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err = tpl.HasKey(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	tpl := newIntTemplate(memory.NewConnectionFactory())
	list := tpl.OpsForList()

	_, err := list.RightPush(ctx, "list", 1, 2)
	require.NoError(t, err)
	_, err = list.RightPush(ctx, "list", 3)
	require.NoError(t, err)
	_, _, err = list.BlockingLeftPop(ctx, "list", time.Second)
	require.NoError(t, err)

	var buf bytes.Buffer
	tpl.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, `kvt_commands_total{template="test",command="RPUSH"} 2`)
	assert.Contains(t, out, `kvt_command_duration_seconds_count{template="test",command="RPUSH"} 2`)
	assert.Contains(t, out, `kvt_commands_total{template="test",command="BLPOP"} 1`)
	assert.NotContains(t, out, `kvt_command_duration_seconds_count{template="test",command="BLPOP"}`)
}

// --------------------------------------------------------------------------
// Raw marshalling
// --------------------------------------------------------------------------

func TestRawKeysOrder(t *testing.T) {
	o := operations[string, int, string, int]{newIntTemplate(memory.NewConnectionFactory())}

	raw, err := o.rawKeys("A", []string{"B", "C"})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("A"), []byte("B"), []byte("C")}, raw)

	raw, err = o.rawKeys("A", []string{"B"})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("A"), []byte("B")}, raw)

	raw, err = o.rawKeys("A", nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("A")}, raw)
}

func TestRawValuesPositional(t *testing.T) {
	o := operations[string, int, string, int]{newIntTemplate(memory.NewConnectionFactory())}

	raw, err := o.rawValues([]int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("3"), []byte("1"), []byte("2")}, raw)
}

func TestDeserializeHashEntriesNil(t *testing.T) {
	o := operations[string, int, string, int]{newIntTemplate(memory.NewConnectionFactory())}

	m, err := o.deserializeHashEntries(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Nil(t, EntryMap(m))

	m, err = o.deserializeHashEntries([]connection.RawEntry{})
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
	assert.NotNil(t, EntryMap(m))

	values, err := o.deserializeValues(nil)
	require.NoError(t, err)
	assert.Nil(t, values)
}

func TestDeserializeHashEntriesPairing(t *testing.T) {
	tpl := New(memory.NewConnectionFactory(), Config[string, string, int, Person]{
		HashKeySerializer:   serializer.NewDecimalSerializer[int](),
		HashValueSerializer: serializer.NewJSONSerializer[Person](),
	})
	o := operations[string, string, int, Person]{tpl}

	alice := Person{Name: "alice", Address: Address{Number: 1}}
	bob := Person{Name: "bob", Address: Address{Number: 2}}
	rawAlice, err := tpl.HashValueSerializer().Serialize(alice)
	require.NoError(t, err)
	rawBob, err := tpl.HashValueSerializer().Serialize(bob)
	require.NoError(t, err)

	m, err := o.deserializeHashEntries([]connection.RawEntry{
		{Key: []byte("2"), Value: rawBob},
		{Key: []byte("1"), Value: rawAlice},
	})
	require.NoError(t, err)
	assert.Equal(t, []TypedEntry[int, Person]{{Key: 2, Value: bob}, {Key: 1, Value: alice}}, m)
	assert.Equal(t, map[int]Person{1: alice, 2: bob}, EntryMap(m))
}

func TestTimeoutSeconds(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    int64
	}{
		{0, 0},
		{999 * time.Millisecond, 0},
		{time.Second, 1},
		{1500 * time.Millisecond, 1},
		{2 * time.Minute, 120},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timeoutSeconds(tt.timeout), tt.timeout.String())
	}
}

func TestBlockingTimeoutTruncated(t *testing.T) {
	ctx := context.Background()
	factory := newRecordingFactory()
	list := newIntTemplate(factory).OpsForList()

	_, err := list.RightPush(ctx, "list", 1, 2, 3)
	require.NoError(t, err)

	_, _, err = list.BlockingLeftPop(ctx, "list", 1500*time.Millisecond)
	require.NoError(t, err)
	_, _, err = list.BlockingRightPop(ctx, "list", 2500*time.Millisecond)
	require.NoError(t, err)
	_, _, err = list.BlockingRightPopAndLeftPush(ctx, "list", "other", 3*time.Second)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, factory.timeouts)
}

func TestEndToEndJSON(t *testing.T) {
	ctx := context.Background()
	list := newIntTemplate(memory.NewConnectionFactory()).OpsForList()

	n, err := list.RightPush(ctx, "numbers", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	values, err := list.Range(ctx, "numbers", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestStringTemplate(t *testing.T) {
	ctx := context.Background()
	tpl := NewStringTemplate(memory.NewConnectionFactory())

	require.NoError(t, tpl.OpsForHash().Put(ctx, "h", "field", "value"))
	entries, err := tpl.OpsForHash().Entries(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, []TypedEntry[string, string]{{Key: "field", Value: "value"}}, entries)
	assert.Equal(t, "string", tpl.Name())
}
