/*
Package template provides typed access to a key-value server.

A Template converts typed keys and values to bytes using four serializers (keys, values,
hash keys and hash values) and runs exactly one command per operation on a connection
borrowed from a connection.IConnectionFactory. The command families are exposed through
facades:

	t := template.New(factory, template.Config[string, Person, string, string]{
		KeySerializer:   serializer.NewStringSerializer(),
		ValueSerializer: serializer.NewJSONSerializer[Person](),
	})
	n, err := t.OpsForList().RightPush(ctx, "people", alice, bob)

Single element results are returned together with an ok flag that is false if the server
had no element. Nil keys are rejected with ErrNilKey before any connection is used.

Each template records per command counters and latency histograms, see Template.WritePrometheus.
*/
package template
