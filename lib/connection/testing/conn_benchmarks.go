package testing

import (
	"context"
	"strconv"
	"testing"

	"github.com/ValentinKolb/kvt/lib/connection"
)

// RunConnectionBenchmarks runs benchmarks for the most common commands of an IConnection implementation.
func RunConnectionBenchmarks(b *testing.B, name string, factory FactoryFunc) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, connect(b, factory))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, connect(b, factory))
		})

		b.Run("PushPop", func(b *testing.B) {
			benchmarkPushPop(b, connect(b, factory))
		})

		b.Run("LRange", func(b *testing.B) {
			benchmarkLRange(b, connect(b, factory))
		})

		b.Run("HSetHGet", func(b *testing.B) {
			benchmarkHSetHGet(b, connect(b, factory))
		})

		b.Run("SAddSIsMember", func(b *testing.B) {
			benchmarkSAddSIsMember(b, connect(b, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	value := make([]byte, 128)
	prefix := string(newKey("bench-set"))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := conn.Set(ctx, []byte(prefix+strconv.Itoa(i)), value); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkGet(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("bench-get")
	if err := conn.Set(ctx, key, make([]byte, 128)); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Get(ctx, key); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkPushPop(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("bench-list")
	value := []byte("value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.RPush(ctx, key, value); err != nil {
			b.Fatal(err)
		}
		if _, err := conn.LPop(ctx, key); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkLRange(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("bench-range")
	values := make([][]byte, 100)
	for i := range values {
		values[i] = []byte(strconv.Itoa(i))
	}
	if _, err := conn.RPush(ctx, key, values...); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.LRange(ctx, key, 0, -1); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkHSetHGet(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("bench-hash")
	value := []byte("value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		field := []byte(strconv.Itoa(i % 1000))
		if _, err := conn.HSet(ctx, key, field, value); err != nil {
			b.Fatal(err)
		}
		if _, err := conn.HGet(ctx, key, field); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkSAddSIsMember(b *testing.B, conn connection.IConnection) {
	ctx := context.Background()
	key := newKey("bench-set")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		member := []byte(strconv.Itoa(i % 1000))
		if _, err := conn.SAdd(ctx, key, member); err != nil {
			b.Fatal(err)
		}
		if _, err := conn.SIsMember(ctx, key, member); err != nil {
			b.Fatal(err)
		}
	}
}
