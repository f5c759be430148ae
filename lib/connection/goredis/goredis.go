package goredis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ValentinKolb/kvt/lib/common"
	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
)

var Logger = logger.GetLogger("goredis")

// --------------------------------------------------------------------------
// Connection Factory
// --------------------------------------------------------------------------

// ConnectionFactory hands out connections backed by one go-redis client.
// Pooling and reconnects are handled by the client.
type ConnectionFactory struct {
	client redis.UniversalClient
}

// NewConnectionFactory creates a factory for an existing client. The caller keeps
// ownership of the client.
func NewConnectionFactory(client redis.UniversalClient) *ConnectionFactory {
	return &ConnectionFactory{client: client}
}

// NewConnectionFactoryFromConfig creates a client from the given config.
// The client is closed by ConnectionFactory.Close.
func NewConnectionFactoryFromConfig(config common.ClientConfig) (*ConnectionFactory, error) {
	if len(config.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        config.Endpoints,
		Password:     config.Password,
		DB:           config.DB,
		Protocol:     config.Protocol,
		DialTimeout:  config.Timeout,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
		PoolSize:     config.PoolSize,
	})
	Logger.Debugf("created client for %v (db=%d, protocol=%d)", config.Endpoints, config.DB, config.Protocol)
	return NewConnectionFactory(client), nil
}

// GetConnection returns a connection sharing the client's pool
func (f *ConnectionFactory) GetConnection(ctx context.Context) (connection.IConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &redisConnection{client: f.client}, nil
}

// Ping checks that the server is reachable
func (f *ConnectionFactory) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (f *ConnectionFactory) Close() error {
	return f.client.Close()
}

// redisConnection implements connection.IConnection with a go-redis client
type redisConnection struct {
	client redis.UniversalClient
}

// --------------------------------------------------------------------------
// Interface Methods (docu see connection.IConnection)
// --------------------------------------------------------------------------

func (c *redisConnection) Close() error {
	// the pool belongs to the factory
	return nil
}

func (c *redisConnection) Del(ctx context.Context, keys ...[]byte) (int64, error) {
	return c.client.Del(ctx, toStrings(keys)...).Result()
}

func (c *redisConnection) Exists(ctx context.Context, key []byte) (bool, error) {
	n, err := c.client.Exists(ctx, string(key)).Result()
	return n > 0, err
}

func (c *redisConnection) Get(ctx context.Context, key []byte) ([]byte, error) {
	return optionalBytes(c.client.Get(ctx, string(key)).Bytes())
}

func (c *redisConnection) Set(ctx context.Context, key, value []byte) error {
	return c.client.Set(ctx, string(key), value, 0).Err()
}

func (c *redisConnection) SetNX(ctx context.Context, key, value []byte) (bool, error) {
	return c.client.SetNX(ctx, string(key), value, 0).Result()
}

func (c *redisConnection) GetSet(ctx context.Context, key, value []byte) ([]byte, error) {
	return optionalBytes(c.client.GetSet(ctx, string(key), value).Bytes())
}

func (c *redisConnection) MGet(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	values, err := c.client.MGet(ctx, toStrings(keys)...).Result()
	if err != nil {
		return nil, err
	}
	return fromInterfaces(values), nil
}

func (c *redisConnection) IncrBy(ctx context.Context, key []byte, delta int64) (int64, error) {
	return c.client.IncrBy(ctx, string(key), delta).Result()
}

func (c *redisConnection) LIndex(ctx context.Context, key []byte, index int64) ([]byte, error) {
	return optionalBytes(c.client.LIndex(ctx, string(key), index).Bytes())
}

func (c *redisConnection) LInsert(ctx context.Context, key []byte, where connection.Position, pivot, value []byte) (int64, error) {
	if where == connection.After {
		return c.client.LInsertAfter(ctx, string(key), pivot, value).Result()
	}
	return c.client.LInsertBefore(ctx, string(key), pivot, value).Result()
}

func (c *redisConnection) LLen(ctx context.Context, key []byte) (int64, error) {
	return c.client.LLen(ctx, string(key)).Result()
}

func (c *redisConnection) LPop(ctx context.Context, key []byte) ([]byte, error) {
	return optionalBytes(c.client.LPop(ctx, string(key)).Bytes())
}

func (c *redisConnection) BLPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	return blockingResult(c.client.BLPop(ctx, seconds(timeoutSec), string(key)).Result())
}

func (c *redisConnection) LPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	return c.client.LPush(ctx, string(key), toInterfaces(values)...).Result()
}

func (c *redisConnection) LPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	return c.client.LPushX(ctx, string(key), toInterfaces(values)...).Result()
}

func (c *redisConnection) LRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	return bytesSlice(c.client.LRange(ctx, string(key), start, stop).Result())
}

func (c *redisConnection) LRem(ctx context.Context, key []byte, count int64, value []byte) (int64, error) {
	return c.client.LRem(ctx, string(key), count, value).Result()
}

func (c *redisConnection) LSet(ctx context.Context, key []byte, index int64, value []byte) error {
	return c.client.LSet(ctx, string(key), index, value).Err()
}

func (c *redisConnection) LTrim(ctx context.Context, key []byte, start, stop int64) error {
	return c.client.LTrim(ctx, string(key), start, stop).Err()
}

func (c *redisConnection) RPop(ctx context.Context, key []byte) ([]byte, error) {
	return optionalBytes(c.client.RPop(ctx, string(key)).Bytes())
}

func (c *redisConnection) BRPop(ctx context.Context, timeoutSec int64, key []byte) ([]byte, error) {
	return blockingResult(c.client.BRPop(ctx, seconds(timeoutSec), string(key)).Result())
}

func (c *redisConnection) RPopLPush(ctx context.Context, src, dst []byte) ([]byte, error) {
	return optionalBytes(c.client.RPopLPush(ctx, string(src), string(dst)).Bytes())
}

func (c *redisConnection) BRPopLPush(ctx context.Context, src, dst []byte, timeoutSec int64) ([]byte, error) {
	return optionalBytes(c.client.BRPopLPush(ctx, string(src), string(dst), seconds(timeoutSec)).Bytes())
}

func (c *redisConnection) RPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	return c.client.RPush(ctx, string(key), toInterfaces(values)...).Result()
}

func (c *redisConnection) RPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	return c.client.RPushX(ctx, string(key), toInterfaces(values)...).Result()
}

func (c *redisConnection) SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	return c.client.SAdd(ctx, string(key), toInterfaces(members)...).Result()
}

func (c *redisConnection) SCard(ctx context.Context, key []byte) (int64, error) {
	return c.client.SCard(ctx, string(key)).Result()
}

func (c *redisConnection) SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return bytesSlice(c.client.SDiff(ctx, toStrings(keys)...).Result())
}

func (c *redisConnection) SDiffStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return c.client.SDiffStore(ctx, string(dst), toStrings(keys)...).Result()
}

func (c *redisConnection) SInter(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return bytesSlice(c.client.SInter(ctx, toStrings(keys)...).Result())
}

func (c *redisConnection) SInterStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return c.client.SInterStore(ctx, string(dst), toStrings(keys)...).Result()
}

func (c *redisConnection) SIsMember(ctx context.Context, key, member []byte) (bool, error) {
	return c.client.SIsMember(ctx, string(key), member).Result()
}

func (c *redisConnection) SMembers(ctx context.Context, key []byte) ([][]byte, error) {
	return bytesSlice(c.client.SMembers(ctx, string(key)).Result())
}

func (c *redisConnection) SMove(ctx context.Context, src, dst, member []byte) (bool, error) {
	return c.client.SMove(ctx, string(src), string(dst), member).Result()
}

func (c *redisConnection) SPop(ctx context.Context, key []byte) ([]byte, error) {
	return optionalBytes(c.client.SPop(ctx, string(key)).Bytes())
}

func (c *redisConnection) SRandMember(ctx context.Context, key []byte) ([]byte, error) {
	return optionalBytes(c.client.SRandMember(ctx, string(key)).Bytes())
}

func (c *redisConnection) SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	return c.client.SRem(ctx, string(key), toInterfaces(members)...).Result()
}

func (c *redisConnection) SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return bytesSlice(c.client.SUnion(ctx, toStrings(keys)...).Result())
}

func (c *redisConnection) SUnionStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return c.client.SUnionStore(ctx, string(dst), toStrings(keys)...).Result()
}

func (c *redisConnection) HDel(ctx context.Context, key []byte, fields ...[]byte) (int64, error) {
	return c.client.HDel(ctx, string(key), toStrings(fields)...).Result()
}

func (c *redisConnection) HExists(ctx context.Context, key, field []byte) (bool, error) {
	return c.client.HExists(ctx, string(key), string(field)).Result()
}

func (c *redisConnection) HGet(ctx context.Context, key, field []byte) ([]byte, error) {
	return optionalBytes(c.client.HGet(ctx, string(key), string(field)).Bytes())
}

// HGetAll uses the raw reply to keep the field order the server sent
func (c *redisConnection) HGetAll(ctx context.Context, key []byte) ([]connection.RawEntry, error) {
	reply, err := c.client.Do(ctx, "HGETALL", string(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entries []connection.RawEntry
	switch r := reply.(type) {
	case []interface{}: // RESP2: flat field/value list
		if len(r)%2 != 0 {
			return nil, fmt.Errorf("HGETALL: odd number of elements (%d)", len(r))
		}
		for i := 0; i < len(r); i += 2 {
			entries = append(entries, connection.RawEntry{Key: toBytes(r[i]), Value: toBytes(r[i+1])})
		}
	case map[interface{}]interface{}: // RESP3: map reply, order is lost on the client
		for k, v := range r {
			entries = append(entries, connection.RawEntry{Key: toBytes(k), Value: toBytes(v)})
		}
		sort.Slice(entries, func(i, j int) bool {
			return string(entries[i].Key) < string(entries[j].Key)
		})
	default:
		return nil, fmt.Errorf("HGETALL: unexpected reply type %T", reply)
	}
	return entries, nil
}

func (c *redisConnection) HIncrBy(ctx context.Context, key, field []byte, delta int64) (int64, error) {
	return c.client.HIncrBy(ctx, string(key), string(field), delta).Result()
}

func (c *redisConnection) HIncrByFloat(ctx context.Context, key, field []byte, delta float64) (float64, error) {
	return c.client.HIncrByFloat(ctx, string(key), string(field), delta).Result()
}

func (c *redisConnection) HKeys(ctx context.Context, key []byte) ([][]byte, error) {
	return bytesSlice(c.client.HKeys(ctx, string(key)).Result())
}

func (c *redisConnection) HLen(ctx context.Context, key []byte) (int64, error) {
	return c.client.HLen(ctx, string(key)).Result()
}

func (c *redisConnection) HMGet(ctx context.Context, key []byte, fields ...[]byte) ([][]byte, error) {
	values, err := c.client.HMGet(ctx, string(key), toStrings(fields)...).Result()
	if err != nil {
		return nil, err
	}
	return fromInterfaces(values), nil
}

func (c *redisConnection) HMSet(ctx context.Context, key []byte, entries []connection.RawEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]interface{}, 0, 2*len(entries))
	for _, e := range entries {
		args = append(args, e.Key, e.Value)
	}
	return c.client.HMSet(ctx, string(key), args...).Err()
}

func (c *redisConnection) HSet(ctx context.Context, key, field, value []byte) (bool, error) {
	n, err := c.client.HSet(ctx, string(key), field, value).Result()
	return n > 0, err
}

func (c *redisConnection) HSetNX(ctx context.Context, key, field, value []byte) (bool, error) {
	return c.client.HSetNX(ctx, string(key), string(field), value).Result()
}

func (c *redisConnection) HVals(ctx context.Context, key []byte) ([][]byte, error) {
	return bytesSlice(c.client.HVals(ctx, string(key)).Result())
}

func (c *redisConnection) ZAdd(ctx context.Context, key []byte, score float64, member []byte) (bool, error) {
	n, err := c.client.ZAdd(ctx, string(key), redis.Z{Score: score, Member: member}).Result()
	return n > 0, err
}

func (c *redisConnection) ZCard(ctx context.Context, key []byte) (int64, error) {
	return c.client.ZCard(ctx, string(key)).Result()
}

func (c *redisConnection) ZCount(ctx context.Context, key []byte, min, max float64) (int64, error) {
	return c.client.ZCount(ctx, string(key), formatScore(min), formatScore(max)).Result()
}

func (c *redisConnection) ZIncrBy(ctx context.Context, key []byte, delta float64, member []byte) (float64, error) {
	return c.client.ZIncrBy(ctx, string(key), delta, string(member)).Result()
}

func (c *redisConnection) ZInterStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return c.client.ZInterStore(ctx, string(dst), &redis.ZStore{Keys: toStrings(keys)}).Result()
}

func (c *redisConnection) ZRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	return bytesSlice(c.client.ZRange(ctx, string(key), start, stop).Result())
}

func (c *redisConnection) ZRangeByScore(ctx context.Context, key []byte, min, max float64) ([][]byte, error) {
	return bytesSlice(c.client.ZRangeByScore(ctx, string(key), &redis.ZRangeBy{
		Min: formatScore(min),
		Max: formatScore(max),
	}).Result())
}

func (c *redisConnection) ZRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]connection.RawTuple, error) {
	zs, err := c.client.ZRangeWithScores(ctx, string(key), start, stop).Result()
	if err != nil {
		return nil, err
	}
	tuples := make([]connection.RawTuple, len(zs))
	for i, z := range zs {
		tuples[i] = connection.RawTuple{Member: toBytes(z.Member), Score: z.Score}
	}
	return tuples, nil
}

func (c *redisConnection) ZRank(ctx context.Context, key, member []byte) (int64, bool, error) {
	return optionalInt(c.client.ZRank(ctx, string(key), string(member)).Result())
}

func (c *redisConnection) ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	return c.client.ZRem(ctx, string(key), toInterfaces(members)...).Result()
}

func (c *redisConnection) ZRemRangeByRank(ctx context.Context, key []byte, start, stop int64) (int64, error) {
	return c.client.ZRemRangeByRank(ctx, string(key), start, stop).Result()
}

func (c *redisConnection) ZRemRangeByScore(ctx context.Context, key []byte, min, max float64) (int64, error) {
	return c.client.ZRemRangeByScore(ctx, string(key), formatScore(min), formatScore(max)).Result()
}

func (c *redisConnection) ZRevRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	return bytesSlice(c.client.ZRevRange(ctx, string(key), start, stop).Result())
}

func (c *redisConnection) ZRevRank(ctx context.Context, key, member []byte) (int64, bool, error) {
	return optionalInt(c.client.ZRevRank(ctx, string(key), string(member)).Result())
}

func (c *redisConnection) ZScore(ctx context.Context, key, member []byte) (float64, bool, error) {
	score, err := c.client.ZScore(ctx, string(key), string(member)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (c *redisConnection) ZUnionStore(ctx context.Context, dst []byte, keys ...[]byte) (int64, error) {
	return c.client.ZUnionStore(ctx, string(dst), &redis.ZStore{Keys: toStrings(keys)}).Result()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// optionalBytes maps redis.Nil to a nil value and guarantees a non-nil slice otherwise
func optionalBytes(b []byte, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

func optionalInt(n int64, err error) (int64, bool, error) {
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// blockingResult extracts the value of a [key, value] pop reply
func blockingResult(reply []string, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(reply) != 2 {
		return nil, fmt.Errorf("unexpected blocking pop reply of length %d", len(reply))
	}
	return []byte(reply[1]), nil
}

func bytesSlice(values []string, err error) ([][]byte, error) {
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(values))
	for i, v := range values {
		result[i] = []byte(v)
	}
	return result, nil
}

// fromInterfaces converts an MGET/HMGET reply, missing entries stay nil
func fromInterfaces(values []interface{}) [][]byte {
	result := make([][]byte, len(values))
	for i, v := range values {
		if v != nil {
			result[i] = toBytes(v)
		}
	}
	return result
}

func toBytes(v interface{}) []byte {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case []byte:
		return t
	case nil:
		return nil
	default:
		return []byte(fmt.Sprint(t))
	}
}

func toStrings(values [][]byte) []string {
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = string(v)
	}
	return result
}

func toInterfaces(values [][]byte) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

func formatScore(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "+inf"
	case math.IsInf(score, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(score, 'f', -1, 64)
	}
}

// seconds converts a whole-second timeout into the duration go-redis expects
func seconds(timeoutSec int64) time.Duration {
	return time.Duration(timeoutSec) * time.Second
}
