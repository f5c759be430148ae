package connection

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command identifies a server command. Templates use it to label metrics and log lines.
type Command uint8

const (
	CmdUnknown Command = iota

	// Keys
	CmdDel
	CmdExists

	// Strings
	CmdGet
	CmdSet
	CmdSetNX
	CmdGetSet
	CmdMGet
	CmdIncrBy

	// Lists
	CmdLIndex
	CmdLInsert
	CmdLLen
	CmdLPop
	CmdBLPop
	CmdLPush
	CmdLPushX
	CmdLRange
	CmdLRem
	CmdLSet
	CmdLTrim
	CmdRPop
	CmdBRPop
	CmdRPopLPush
	CmdBRPopLPush
	CmdRPush
	CmdRPushX

	// Sets
	CmdSAdd
	CmdSCard
	CmdSDiff
	CmdSDiffStore
	CmdSInter
	CmdSInterStore
	CmdSIsMember
	CmdSMembers
	CmdSMove
	CmdSPop
	CmdSRandMember
	CmdSRem
	CmdSUnion
	CmdSUnionStore

	// Hashes
	CmdHDel
	CmdHExists
	CmdHGet
	CmdHGetAll
	CmdHIncrBy
	CmdHIncrByFloat
	CmdHKeys
	CmdHLen
	CmdHMGet
	CmdHMSet
	CmdHSet
	CmdHSetNX
	CmdHVals

	// Sorted sets
	CmdZAdd
	CmdZCard
	CmdZCount
	CmdZIncrBy
	CmdZInterStore
	CmdZRange
	CmdZRangeByScore
	CmdZRangeWithScores
	CmdZRank
	CmdZRem
	CmdZRemRangeByRank
	CmdZRemRangeByScore
	CmdZRevRange
	CmdZRevRank
	CmdZScore
	CmdZUnionStore

	cmdCount
)

var commandNames = [cmdCount]string{
	CmdUnknown:          "UNKNOWN",
	CmdDel:              "DEL",
	CmdExists:           "EXISTS",
	CmdGet:              "GET",
	CmdSet:              "SET",
	CmdSetNX:            "SETNX",
	CmdGetSet:           "GETSET",
	CmdMGet:             "MGET",
	CmdIncrBy:           "INCRBY",
	CmdLIndex:           "LINDEX",
	CmdLInsert:          "LINSERT",
	CmdLLen:             "LLEN",
	CmdLPop:             "LPOP",
	CmdBLPop:            "BLPOP",
	CmdLPush:            "LPUSH",
	CmdLPushX:           "LPUSHX",
	CmdLRange:           "LRANGE",
	CmdLRem:             "LREM",
	CmdLSet:             "LSET",
	CmdLTrim:            "LTRIM",
	CmdRPop:             "RPOP",
	CmdBRPop:            "BRPOP",
	CmdRPopLPush:        "RPOPLPUSH",
	CmdBRPopLPush:       "BRPOPLPUSH",
	CmdRPush:            "RPUSH",
	CmdRPushX:           "RPUSHX",
	CmdSAdd:             "SADD",
	CmdSCard:            "SCARD",
	CmdSDiff:            "SDIFF",
	CmdSDiffStore:       "SDIFFSTORE",
	CmdSInter:           "SINTER",
	CmdSInterStore:      "SINTERSTORE",
	CmdSIsMember:        "SISMEMBER",
	CmdSMembers:         "SMEMBERS",
	CmdSMove:            "SMOVE",
	CmdSPop:             "SPOP",
	CmdSRandMember:      "SRANDMEMBER",
	CmdSRem:             "SREM",
	CmdSUnion:           "SUNION",
	CmdSUnionStore:      "SUNIONSTORE",
	CmdHDel:             "HDEL",
	CmdHExists:          "HEXISTS",
	CmdHGet:             "HGET",
	CmdHGetAll:          "HGETALL",
	CmdHIncrBy:          "HINCRBY",
	CmdHIncrByFloat:     "HINCRBYFLOAT",
	CmdHKeys:            "HKEYS",
	CmdHLen:             "HLEN",
	CmdHMGet:            "HMGET",
	CmdHMSet:            "HMSET",
	CmdHSet:             "HSET",
	CmdHSetNX:           "HSETNX",
	CmdHVals:            "HVALS",
	CmdZAdd:             "ZADD",
	CmdZCard:            "ZCARD",
	CmdZCount:           "ZCOUNT",
	CmdZIncrBy:          "ZINCRBY",
	CmdZInterStore:      "ZINTERSTORE",
	CmdZRange:           "ZRANGE",
	CmdZRangeByScore:    "ZRANGEBYSCORE",
	CmdZRangeWithScores: "ZRANGE_WITHSCORES",
	CmdZRank:            "ZRANK",
	CmdZRem:             "ZREM",
	CmdZRemRangeByRank:  "ZREMRANGEBYRANK",
	CmdZRemRangeByScore: "ZREMRANGEBYSCORE",
	CmdZRevRange:        "ZREVRANGE",
	CmdZRevRank:         "ZREVRANK",
	CmdZScore:           "ZSCORE",
	CmdZUnionStore:      "ZUNIONSTORE",
}

// String returns the server side name of the command
func (c Command) String() string {
	if c >= cmdCount {
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
	return commandNames[c]
}

// Blocking reports whether the command may block the connection until a value arrives
func (c Command) Blocking() bool {
	return c == CmdBLPop || c == CmdBRPop || c == CmdBRPopLPush
}

// ParseCommand returns the command for the given name (case-insensitive)
func ParseCommand(name string) (Command, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name && Command(c) != CmdUnknown {
			return Command(c), nil
		}
	}
	return CmdUnknown, fmt.Errorf("unknown command: %s", name)
}

// Commands returns all known commands in declaration order
func Commands() []Command {
	cmds := make([]Command, 0, cmdCount-1)
	for c := CmdUnknown + 1; c < cmdCount; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

// MarshalJSON marshals the command into a JSON string
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON unmarshals a JSON string into a command
func (c *Command) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cmd, err := ParseCommand(s)
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}
