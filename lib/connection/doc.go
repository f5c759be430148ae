// Package connection defines the byte level execution layer below the typed templates.
//
// An IConnection exposes one method per server command on raw []byte keys and values.
// Implementations never serialize anything themselves, they move bytes between the
// template layer and a key-value server.
//
// Implementations:
//
//   - goredis: adapter around a github.com/redis/go-redis/v9 client. Connection pooling,
//     the wire protocol and reconnects are handled by the driver.
//
//   - memory: in-process implementation holding all collections in memory, guarded by a
//     reader-biased mutex. Used by tests and by the CLI's memory backend.
//
// Every implementation must pass the conformance suite in the testing sub package:
//
//	func TestConnection(t *testing.T) {
//	    conntesting.RunConnectionTests(t, "memory", func() connection.IConnectionFactory {
//	        return memory.NewConnectionFactory()
//	    })
//	}
//
// The Command type names every command for metrics and logging, and Error (with RetCode)
// is returned by implementations that validate commands themselves.
package connection
