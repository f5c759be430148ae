package memory

import (
	"bytes"
	"context"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Value Types
// --------------------------------------------------------------------------

type valueType uint8

const (
	typeString valueType = iota + 1
	typeList
	typeSet
	typeHash
	typeZSet
)

// value is one entry of the keyspace. Exactly one of the fields matching typ is set.
type value struct {
	typ  valueType
	str  []byte
	list [][]byte
	set  *orderedSet
	hash *orderedHash
	zset map[string]float64
}

// orderedSet keeps members in insertion order
type orderedSet struct {
	members [][]byte
	index   map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]struct{})}
}

func (s *orderedSet) add(member []byte) bool {
	if _, ok := s.index[string(member)]; ok {
		return false
	}
	s.index[string(member)] = struct{}{}
	s.members = append(s.members, clone(member))
	return true
}

func (s *orderedSet) has(member []byte) bool {
	_, ok := s.index[string(member)]
	return ok
}

func (s *orderedSet) remove(member []byte) bool {
	if _, ok := s.index[string(member)]; !ok {
		return false
	}
	delete(s.index, string(member))
	for i, m := range s.members {
		if bytes.Equal(m, member) {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	return true
}

func (s *orderedSet) size() int {
	return len(s.members)
}

// orderedHash keeps fields in insertion order
type orderedHash struct {
	fields [][]byte
	values map[string][]byte
}

func newOrderedHash() *orderedHash {
	return &orderedHash{values: make(map[string][]byte)}
}

func (h *orderedHash) get(field []byte) ([]byte, bool) {
	v, ok := h.values[string(field)]
	return v, ok
}

// put stores the value and returns true if the field was created
func (h *orderedHash) put(field, v []byte) bool {
	_, exists := h.values[string(field)]
	if !exists {
		h.fields = append(h.fields, clone(field))
	}
	h.values[string(field)] = clone(v)
	return !exists
}

func (h *orderedHash) remove(field []byte) bool {
	if _, ok := h.values[string(field)]; !ok {
		return false
	}
	delete(h.values, string(field))
	for i, f := range h.fields {
		if bytes.Equal(f, field) {
			h.fields = append(h.fields[:i], h.fields[i+1:]...)
			break
		}
	}
	return true
}

func (h *orderedHash) size() int {
	return len(h.fields)
}

// --------------------------------------------------------------------------
// Keyspace
// --------------------------------------------------------------------------

// keyspace holds all collections. All command methods are implemented on keyspace,
// connections only add lifecycle handling.
type keyspace struct {
	mu     *xsync.RBMutex
	data   map[string]*value
	notify chan struct{} // closed and replaced whenever a list grows
	closed bool
}

func newKeyspace() *keyspace {
	return &keyspace{
		mu:     xsync.NewRBMutex(),
		data:   make(map[string]*value),
		notify: make(chan struct{}),
	}
}

// closedKeyspace is swapped into a connection by Close. Every command on it fails with ErrClosed.
var closedKeyspace = &keyspace{
	mu:     xsync.NewRBMutex(),
	notify: make(chan struct{}),
	closed: true,
}

func (ks *keyspace) check() error {
	if ks.closed {
		return connection.ErrClosed
	}
	return nil
}

// signalLocked wakes all goroutines blocked in a list pop. Must be called with the write lock held.
func (ks *keyspace) signalLocked() {
	close(ks.notify)
	ks.notify = make(chan struct{})
}

// lookup returns the value stored at key if it has the wanted type.
// A missing key returns nil and no error.
func (ks *keyspace) lookup(key []byte, typ valueType) (*value, error) {
	if err := ks.check(); err != nil {
		return nil, err
	}
	v, ok := ks.data[string(key)]
	if !ok {
		return nil, nil
	}
	if v.typ != typ {
		return nil, connection.ErrWrongType
	}
	return v, nil
}

// lookupOrCreate returns the value stored at key, creating an empty one of the wanted type
func (ks *keyspace) lookupOrCreate(key []byte, typ valueType) (*value, error) {
	v, err := ks.lookup(key, typ)
	if err != nil || v != nil {
		return v, err
	}
	v = &value{typ: typ}
	switch typ {
	case typeSet:
		v.set = newOrderedSet()
	case typeHash:
		v.hash = newOrderedHash()
	case typeZSet:
		v.zset = make(map[string]float64)
	}
	ks.data[string(key)] = v
	return v, nil
}

// dropIfEmpty removes empty collections, an empty collection never exists on the server
func (ks *keyspace) dropIfEmpty(key []byte, v *value) {
	empty := false
	switch v.typ {
	case typeList:
		empty = len(v.list) == 0
	case typeSet:
		empty = v.set.size() == 0
	case typeHash:
		empty = v.hash.size() == 0
	case typeZSet:
		empty = len(v.zset) == 0
	}
	if empty {
		delete(ks.data, string(key))
	}
}

// blockingPop retries pop until it returns a value, the timeout expires or ctx is done.
// pop is called with the write lock held.
func (ks *keyspace) blockingPop(ctx context.Context, timeoutSec int64, pop func() ([]byte, error)) ([]byte, error) {
	var timeout <-chan time.Time
	if timeoutSec > 0 {
		timer := time.NewTimer(time.Duration(timeoutSec) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		ks.mu.Lock()
		v, err := pop()
		wait := ks.notify
		ks.mu.Unlock()

		if err != nil || v != nil {
			return v, err
		}

		select {
		case <-wait:
		case <-timeout:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// --------------------------------------------------------------------------
// Keys
// --------------------------------------------------------------------------

func (ks *keyspace) Del(_ context.Context, keys ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if err := ks.check(); err != nil {
		return 0, err
	}
	var n int64
	for _, key := range keys {
		if _, ok := ks.data[string(key)]; ok {
			delete(ks.data, string(key))
			n++
		}
	}
	return n, nil
}

func (ks *keyspace) Exists(_ context.Context, key []byte) (bool, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	if err := ks.check(); err != nil {
		return false, err
	}
	_, ok := ks.data[string(key)]
	return ok, nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// clone copies b. The result is never nil.
func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}

// normalizeRange converts an inclusive range with negative offsets counting from the end
// into absolute indices. ok is false if the range is empty.
func normalizeRange(start, stop int64, n int) (int, int, bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return int(start), int(stop), true
}
