// Package memory provides an in-process implementation of connection.IConnection.
//
// All connections created by one ConnectionFactory share a single keyspace holding strings,
// lists, sets, hashes and sorted sets with the semantics of the corresponding server commands:
// empty collections are removed, commands against a key of another type fail with
// connection.ErrWrongType, and blocking pops wait for a push, the timeout or ctx.
//
// Sets and hashes keep their members in insertion order.
//
// Thread Safety:
//
//	The keyspace is guarded by a reader-biased mutex (xsync.RBMutex), so read commands run
//	in parallel. Blocked pops are woken through a broadcast channel on every push.
//
// Persistence:
//
//	Save and Load write and read a snapshot of the whole keyspace (magic number, version,
//	gob encoded body). SaveFile replaces the target file atomically.
package memory
