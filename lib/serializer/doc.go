// Package serializer provides value serialization for the typed template layer. It defines
// a generic interface and multiple implementations that turn typed values into the byte
// payloads stored by the key-value server, and back.
//
// Key Components:
//
//   - IRedisSerializer[T]: Core interface that all serializer implementations must satisfy.
//
//   - gobSerializerImpl: Go's native gob format. Default for every template slot that is
//     not configured explicitly.
//
//   - jsonSerializerImpl, xmlSerializerImpl, yamlSerializerImpl: text formats, useful for
//     debugging or interoperability with clients written in other languages.
//
//   - msgpackSerializerImpl: compact MessagePack encoding.
//
//   - protoSerializerImpl: protobuf wire format for generated message types.
//
//   - stringSerializerImpl, bytesSerializerImpl, decimalSerializerImpl: plain payloads for
//     keys, raw data and counters.
//
// Null Handling:
//
//	Serializing a nil value (nil pointer, map, slice or interface) yields EmptyArray, a
//	non-nil byte slice of length zero. Deserializing a nil or empty payload yields the zero
//	value of T. Codec failures are reported as *Error carrying the cause.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s := serializer.NewJSONSerializer[Person]()
//	data, err := s.Serialize(person)
//	// ... store data ...
//	person, err = s.Deserialize(data)
package serializer
