package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/ValentinKolb/kvt/lib/connection"
)

func (ks *keyspace) ZAdd(_ context.Context, key []byte, score float64, member []byte) (bool, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeZSet)
	if err != nil {
		return false, err
	}
	_, exists := v.zset[string(member)]
	v.zset[string(member)] = score
	return !exists, nil
}

func (ks *keyspace) ZCard(_ context.Context, key []byte) (int64, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, err
	}
	return int64(len(v.zset)), nil
}

func (ks *keyspace) ZCount(_ context.Context, key []byte, min, max float64) (int64, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, err
	}
	var n int64
	for _, score := range v.zset {
		if score >= min && score <= max {
			n++
		}
	}
	return n, nil
}

func (ks *keyspace) ZIncrBy(_ context.Context, key []byte, delta float64, member []byte) (float64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookupOrCreate(key, typeZSet)
	if err != nil {
		return 0, err
	}
	v.zset[string(member)] += delta
	return v.zset[string(member)], nil
}

func (ks *keyspace) ZInterStore(_ context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return ks.zcombineAndStore(dst, keys, inter)
}

func (ks *keyspace) ZRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	tuples, err := ks.ZRangeWithScores(ctx, key, start, stop)
	return members(tuples), err
}

func (ks *keyspace) ZRangeByScore(_ context.Context, key []byte, min, max float64) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil {
		return nil, err
	}
	result := [][]byte{}
	if v == nil {
		return result, nil
	}
	for _, tuple := range sortedTuples(v.zset) {
		if tuple.Score >= min && tuple.Score <= max {
			result = append(result, tuple.Member)
		}
	}
	return result, nil
}

func (ks *keyspace) ZRangeWithScores(_ context.Context, key []byte, start, stop int64) ([]connection.RawTuple, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []connection.RawTuple{}, nil
	}
	sorted := sortedTuples(v.zset)
	from, to, ok := normalizeRange(start, stop, len(sorted))
	if !ok {
		return []connection.RawTuple{}, nil
	}
	return sorted[from : to+1], nil
}

func (ks *keyspace) ZRank(_ context.Context, key, member []byte) (int64, bool, error) {
	return ks.rank(key, member, false)
}

func (ks *keyspace) ZRem(_ context.Context, key []byte, members ...[]byte) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, err
	}
	var removed int64
	for _, m := range members {
		if _, ok := v.zset[string(m)]; ok {
			delete(v.zset, string(m))
			removed++
		}
	}
	ks.dropIfEmpty(key, v)
	return removed, nil
}

func (ks *keyspace) ZRemRangeByRank(_ context.Context, key []byte, start, stop int64) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, err
	}
	sorted := sortedTuples(v.zset)
	from, to, ok := normalizeRange(start, stop, len(sorted))
	if !ok {
		return 0, nil
	}
	for _, tuple := range sorted[from : to+1] {
		delete(v.zset, string(tuple.Member))
	}
	ks.dropIfEmpty(key, v)
	return int64(to - from + 1), nil
}

func (ks *keyspace) ZRemRangeByScore(_ context.Context, key []byte, min, max float64) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, err
	}
	var removed int64
	for m, score := range v.zset {
		if score >= min && score <= max {
			delete(v.zset, m)
			removed++
		}
	}
	ks.dropIfEmpty(key, v)
	return removed, nil
}

func (ks *keyspace) ZRevRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return [][]byte{}, nil
	}
	sorted := sortedTuples(v.zset)
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	from, to, ok := normalizeRange(start, stop, len(sorted))
	if !ok {
		return [][]byte{}, nil
	}
	return members(sorted[from : to+1]), nil
}

func (ks *keyspace) ZRevRank(_ context.Context, key, member []byte) (int64, bool, error) {
	return ks.rank(key, member, true)
}

func (ks *keyspace) ZScore(_ context.Context, key, member []byte) (float64, bool, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, false, err
	}
	score, ok := v.zset[string(member)]
	return score, ok, nil
}

func (ks *keyspace) ZUnionStore(_ context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return ks.zcombineAndStore(dst, keys, union)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// sortedTuples orders members by score, ties are ordered lexicographically
func sortedTuples(zset map[string]float64) []connection.RawTuple {
	tuples := make([]connection.RawTuple, 0, len(zset))
	for m, score := range zset {
		tuples = append(tuples, connection.RawTuple{Member: []byte(m), Score: score})
	}
	sort.Slice(tuples, func(i, j int) bool {
		if tuples[i].Score != tuples[j].Score {
			return tuples[i].Score < tuples[j].Score
		}
		return bytes.Compare(tuples[i].Member, tuples[j].Member) < 0
	})
	return tuples
}

func members(tuples []connection.RawTuple) [][]byte {
	if tuples == nil {
		return nil
	}
	result := make([][]byte, len(tuples))
	for i, tuple := range tuples {
		result[i] = tuple.Member
	}
	return result
}

func (ks *keyspace) rank(key, member []byte, reverse bool) (int64, bool, error) {
	t := ks.mu.RLock()
	defer ks.mu.RUnlock(t)
	v, err := ks.lookup(key, typeZSet)
	if err != nil || v == nil {
		return 0, false, err
	}
	if _, ok := v.zset[string(member)]; !ok {
		return 0, false, nil
	}
	sorted := sortedTuples(v.zset)
	for i, tuple := range sorted {
		if bytes.Equal(tuple.Member, member) {
			if reverse {
				return int64(len(sorted) - 1 - i), true, nil
			}
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

// zcombineAndStore sums the scores of the sorted sets at keys (union or intersection)
// and stores the result at dst
func (ks *keyspace) zcombineAndStore(dst []byte, keys [][]byte, op setOp) (int64, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	zsets := make([]map[string]float64, len(keys))
	for i, key := range keys {
		v, err := ks.lookup(key, typeZSet)
		if err != nil {
			return 0, err
		}
		if v != nil {
			zsets[i] = v.zset
		}
	}

	result := make(map[string]float64)
	if op == union {
		for _, z := range zsets {
			for m, score := range z {
				result[m] += score
			}
		}
	} else if len(zsets) > 0 {
		for m, score := range zsets[0] {
			sum, inAll := score, true
			for _, z := range zsets[1:] {
				s, ok := z[m]
				if !ok {
					inAll = false
					break
				}
				sum += s
			}
			if inAll {
				result[m] = sum
			}
		}
	}

	delete(ks.data, string(dst))
	if len(result) > 0 {
		ks.data[string(dst)] = &value{typ: typeZSet, zset: result}
	}
	return int64(len(result)), nil
}
