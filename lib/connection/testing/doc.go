// Package testing provides standardised tests and benchmarks for
// implementations of the connection.IConnection interface.
//
// The package contains:
//   - RunConnectionTests: a test suite validating the command semantics every
//     implementation must share (missing values, empty collections, blocking pops, errors)
//   - RunConnectionBenchmarks: throughput benchmarks for common commands
//
// Every test uses fresh random keys, so factories may share one server.
//
// Example usage:
//
//	factory := func() connection.IConnectionFactory {
//		return memory.NewConnectionFactory()
//	}
//
//	conntesting.RunConnectionTests(t, "memory", factory)
//	conntesting.RunConnectionBenchmarks(b, "memory", factory)
package testing
