package serializer

import (
	"strings"
	"testing"
)

// benchmarkValues returns a set of values for targeted benchmarking
func benchmarkValues() map[string]Person {
	return map[string]Person{
		"Small": {
			Name:    "a",
			Address: Address{Number: 1},
		},
		"Medium": {
			Name:    "medium length name for testing serialization",
			Address: Address{Number: 4711},
		},
		"Large": {
			Name:    strings.Repeat("x", 1024),
			Address: Address{Number: 1 << 30},
		},
	}
}

// BenchmarkSerialize measures Serialize for every object backend
func BenchmarkSerialize(b *testing.B) {
	for sName, s := range objectSerializers[Person]() {
		for vName, v := range benchmarkValues() {
			b.Run(sName+"/"+vName, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := s.Serialize(v); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkRoundTrip measures Serialize followed by Deserialize and reports the payload size
func BenchmarkRoundTrip(b *testing.B) {
	for sName, s := range objectSerializers[Person]() {
		for vName, v := range benchmarkValues() {
			b.Run(sName+"/"+vName, func(b *testing.B) {
				data, err := s.Serialize(v)
				if err != nil {
					b.Fatal(err)
				}
				b.ReportMetric(float64(len(data)), "bytes/op")
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					data, _ := s.Serialize(v)
					if _, err := s.Deserialize(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
