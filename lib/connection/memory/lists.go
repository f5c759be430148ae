package memory

import (
	"bytes"
	"context"

	"github.com/ValentinKolb/kvt/lib/connection"
)

func (ks *keyspace) LIndex(_ context.Context, key []byte, index int64) ([]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return nil, err
	}
	if index < 0 {
		index += int64(len(v.list))
	}
	if index < 0 || index >= int64(len(v.list)) {
		return nil, nil
	}
	return clone(v.list[index]), nil
}

func (ks *keyspace) LInsert(_ context.Context, key []byte, where connection.Position, pivot, val []byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return 0, err
	}
	for i, elem := range v.list {
		if !bytes.Equal(elem, pivot) {
			continue
		}
		at := i
		if where == connection.After {
			at = i + 1
		}
		v.list = append(v.list, nil)
		copy(v.list[at+1:], v.list[at:])
		v.list[at] = clone(val)
		ks.signalLocked()
		return int64(len(v.list)), nil
	}
	return -1, nil
}

func (ks *keyspace) LLen(_ context.Context, key []byte) (int64, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return 0, err
	}
	return int64(len(v.list)), nil
}

func (ks *keyspace) LPop(_ context.Context, key []byte) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.popLocked(key, true)
}

func (ks *keyspace) BLPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	return ks.blockingPop(ctx, timeoutSec, func() ([]byte, error) {
		return ks.popLocked(key, true)
	})
}

func (ks *keyspace) LPush(_ context.Context, key []byte, values ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.pushLocked(key, values, true, false)
}

func (ks *keyspace) LPushX(_ context.Context, key []byte, values ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.pushLocked(key, values, true, true)
}

func (ks *keyspace) LRange(_ context.Context, key []byte, start, stop int64) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeList)
	if err != nil {
		return nil, err
	}
	result := [][]byte{}
	if v == nil {
		return result, nil
	}
	from, to, ok := normalizeRange(start, stop, len(v.list))
	if !ok {
		return result, nil
	}
	for _, elem := range v.list[from : to+1] {
		result = append(result, clone(elem))
	}
	return result, nil
}

func (ks *keyspace) LRem(_ context.Context, key []byte, count int64, val []byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return 0, err
	}

	limit := count
	if limit < 0 {
		limit = -limit
	}
	var removed int64
	keep := make([][]byte, 0, len(v.list))

	if count >= 0 {
		for _, elem := range v.list {
			if bytes.Equal(elem, val) && (limit == 0 || removed < limit) {
				removed++
				continue
			}
			keep = append(keep, elem)
		}
	} else {
		// remove from the tail, then restore the original order
		for i := len(v.list) - 1; i >= 0; i-- {
			if bytes.Equal(v.list[i], val) && removed < limit {
				removed++
				continue
			}
			keep = append(keep, v.list[i])
		}
		for i, j := 0, len(keep)-1; i < j; i, j = i+1, j-1 {
			keep[i], keep[j] = keep[j], keep[i]
		}
	}

	v.list = keep
	ks.dropIfEmpty(key, v)
	return removed, nil
}

func (ks *keyspace) LSet(_ context.Context, key []byte, index int64, val []byte) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeList)
	if err != nil {
		return err
	}
	if v == nil {
		return connection.ErrNoSuchKey
	}
	if index < 0 {
		index += int64(len(v.list))
	}
	if index < 0 || index >= int64(len(v.list)) {
		return connection.ErrOutOfRange
	}
	v.list[index] = clone(val)
	return nil
}

func (ks *keyspace) LTrim(_ context.Context, key []byte, start, stop int64) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return err
	}
	from, to, ok := normalizeRange(start, stop, len(v.list))
	if !ok {
		v.list = nil
	} else {
		v.list = append([][]byte(nil), v.list[from:to+1]...)
	}
	ks.dropIfEmpty(key, v)
	return nil
}

func (ks *keyspace) RPop(_ context.Context, key []byte) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.popLocked(key, false)
}

func (ks *keyspace) BRPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	return ks.blockingPop(ctx, timeoutSec, func() ([]byte, error) {
		return ks.popLocked(key, false)
	})
}

func (ks *keyspace) RPopLPush(_ context.Context, src, dst []byte) ([]byte, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.rpoplpushLocked(src, dst)
}

func (ks *keyspace) BRPopLPush(ctx context.Context, src, dst []byte, timeoutSec int64) ([]byte, error) {
	return ks.blockingPop(ctx, timeoutSec, func() ([]byte, error) {
		return ks.rpoplpushLocked(src, dst)
	})
}

func (ks *keyspace) RPush(_ context.Context, key []byte, values ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.pushLocked(key, values, false, false)
}

func (ks *keyspace) RPushX(_ context.Context, key []byte, values ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.pushLocked(key, values, false, true)
}

// --------------------------------------------------------------------------
// Helper Functions (must be called with the write lock held)
// --------------------------------------------------------------------------

func (ks *keyspace) pushLocked(key []byte, values [][]byte, left, onlyIfExists bool) (int64, error) {
	var v *value
	var err error
	if onlyIfExists {
		v, err = ks.lookup(key, typeList)
		if err != nil || v == nil {
			return 0, err
		}
	} else {
		v, err = ks.lookupOrCreate(key, typeList)
		if err != nil {
			return 0, err
		}
	}

	for _, val := range values {
		if left {
			v.list = append([][]byte{clone(val)}, v.list...)
		} else {
			v.list = append(v.list, clone(val))
		}
	}
	ks.dropIfEmpty(key, v)
	if len(values) > 0 {
		ks.signalLocked()
	}
	return int64(len(v.list)), nil
}

func (ks *keyspace) popLocked(key []byte, left bool) ([]byte, error) {
	v, err := ks.lookup(key, typeList)
	if err != nil || v == nil {
		return nil, err
	}
	var elem []byte
	if left {
		elem = v.list[0]
		v.list = v.list[1:]
	} else {
		elem = v.list[len(v.list)-1]
		v.list = v.list[:len(v.list)-1]
	}
	ks.dropIfEmpty(key, v)
	return elem, nil
}

func (ks *keyspace) rpoplpushLocked(src, dst []byte) ([]byte, error) {
	srcValue, err := ks.lookup(src, typeList)
	if err != nil || srcValue == nil {
		return nil, err
	}
	if _, err := ks.lookup(dst, typeList); err != nil {
		return nil, err
	}
	elem, err := ks.popLocked(src, false)
	if err != nil {
		return nil, err
	}
	if _, err := ks.pushLocked(dst, [][]byte{elem}, true, false); err != nil {
		return nil, err
	}
	return clone(elem), nil
}
