package memory

import (
	"context"
	"sync/atomic"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("memory")

// ConnectionFactory hands out connections to one in-memory keyspace.
// All connections of a factory share the same data.
type ConnectionFactory struct {
	ks *keyspace
}

// NewConnectionFactory creates a factory backed by a new empty keyspace
func NewConnectionFactory() *ConnectionFactory {
	return &ConnectionFactory{ks: newKeyspace()}
}

// GetConnection returns a new connection to the keyspace
func (f *ConnectionFactory) GetConnection(ctx context.Context) (connection.IConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryConnection{keyspace: f.ks}, nil
}

// DBSize returns the number of keys in the keyspace
func (f *ConnectionFactory) DBSize() int {
	t := f.ks.mu.RLock()
	defer f.ks.mu.RUnlock(t)
	return len(f.ks.data)
}

// FlushAll removes all keys
func (f *ConnectionFactory) FlushAll() {
	f.ks.mu.Lock()
	defer f.ks.mu.Unlock()
	f.ks.data = make(map[string]*value)
}

// memoryConnection implements connection.IConnection on top of a shared keyspace.
// After Close it points at closedKeyspace.
type memoryConnection struct {
	*keyspace
	closed atomic.Bool
}

func (c *memoryConnection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return connection.ErrClosed
	}
	c.keyspace = closedKeyspace
	return nil
}
