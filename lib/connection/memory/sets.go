package memory

import (
	"context"
	"math/rand/v2"
)

func (ks *keyspace) SAdd(_ context.Context, key []byte, members ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeSet)
	if err != nil {
		return 0, err
	}
	var added int64
	for _, m := range members {
		if v.set.add(m) {
			added++
		}
	}
	ks.dropIfEmpty(key, v)
	return added, nil
}

func (ks *keyspace) SCard(_ context.Context, key []byte) (int64, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeSet)
	if err != nil || v == nil {
		return 0, err
	}
	return int64(v.set.size()), nil
}

func (ks *keyspace) SDiff(_ context.Context, keys ...[]byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	s, err := ks.combineLocked(keys, diff)
	if err != nil {
		return nil, err
	}
	return cloneAll(s.members), nil
}

func (ks *keyspace) SDiffStore(_ context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return ks.combineAndStore(dst, keys, diff)
}

func (ks *keyspace) SInter(_ context.Context, keys ...[]byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	s, err := ks.combineLocked(keys, inter)
	if err != nil {
		return nil, err
	}
	return cloneAll(s.members), nil
}

func (ks *keyspace) SInterStore(_ context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return ks.combineAndStore(dst, keys, inter)
}

func (ks *keyspace) SIsMember(_ context.Context, key, member []byte) (bool, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeSet)
	if err != nil || v == nil {
		return false, err
	}
	return v.set.has(member), nil
}

func (ks *keyspace) SMembers(_ context.Context, key []byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeSet)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return [][]byte{}, nil
	}
	return cloneAll(v.set.members), nil
}

func (ks *keyspace) SMove(_ context.Context, src, dst, member []byte) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	srcValue, err := ks.lookup(src, typeSet)
	if err != nil {
		return false, err
	}
	if _, err := ks.lookup(dst, typeSet); err != nil {
		return false, err
	}
	if srcValue == nil || !srcValue.set.remove(member) {
		return false, nil
	}
	ks.dropIfEmpty(src, srcValue)
	dstValue, _ := ks.lookupOrCreate(dst, typeSet)
	dstValue.set.add(member)
	return true, nil
}

func (ks *keyspace) SPop(_ context.Context, key []byte) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeSet)
	if err != nil || v == nil {
		return nil, err
	}
	member := v.set.members[rand.IntN(v.set.size())]
	v.set.remove(member)
	ks.dropIfEmpty(key, v)
	return member, nil
}

func (ks *keyspace) SRandMember(_ context.Context, key []byte) ([]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeSet)
	if err != nil || v == nil {
		return nil, err
	}
	return clone(v.set.members[rand.IntN(v.set.size())]), nil
}

func (ks *keyspace) SRem(_ context.Context, key []byte, members ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeSet)
	if err != nil || v == nil {
		return 0, err
	}
	var removed int64
	for _, m := range members {
		if v.set.remove(m) {
			removed++
		}
	}
	ks.dropIfEmpty(key, v)
	return removed, nil
}

func (ks *keyspace) SUnion(_ context.Context, keys ...[]byte) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	s, err := ks.combineLocked(keys, union)
	if err != nil {
		return nil, err
	}
	return cloneAll(s.members), nil
}

func (ks *keyspace) SUnionStore(_ context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return ks.combineAndStore(dst, keys, union)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

type setOp uint8

const (
	diff setOp = iota
	inter
	union
)

// combineLocked applies op to the sets stored at keys, the first key is the base set.
// Missing keys are treated as empty sets. Must be called with a lock held.
func (ks *keyspace) combineLocked(keys [][]byte, op setOp) (*orderedSet, error) {
	sets := make([]*orderedSet, len(keys))
	for i, key := range keys {
		v, err := ks.lookup(key, typeSet)
		if err != nil {
			return nil, err
		}
		if v == nil {
			sets[i] = newOrderedSet()
		} else {
			sets[i] = v.set
		}
	}

	result := newOrderedSet()
	if len(sets) == 0 {
		return result, nil
	}

	switch op {
	case union:
		for _, s := range sets {
			for _, m := range s.members {
				result.add(m)
			}
		}
	case inter:
		for _, m := range sets[0].members {
			if countContaining(sets[1:], m) == len(sets)-1 {
				result.add(m)
			}
		}
	case diff:
		for _, m := range sets[0].members {
			if countContaining(sets[1:], m) == 0 {
				result.add(m)
			}
		}
	}
	return result, nil
}

func (ks *keyspace) combineAndStore(dst []byte, keys [][]byte, op setOp) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	s, err := ks.combineLocked(keys, op)
	if err != nil {
		return 0, err
	}
	delete(ks.data, string(dst))
	if s.size() > 0 {
		ks.data[string(dst)] = &value{typ: typeSet, set: s}
	}
	return int64(s.size()), nil
}

func countContaining(sets []*orderedSet, member []byte) int {
	n := 0
	for _, s := range sets {
		if s.has(member) {
			n++
		}
	}
	return n
}

func cloneAll(values [][]byte) [][]byte {
	result := make([][]byte, len(values))
	for i, v := range values {
		result[i] = clone(v)
	}
	return result
}
