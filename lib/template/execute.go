package template

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/kvt/lib/connection"
	"github.com/VictoriaMetrics/metrics"
)

// executor is the part of a template that talks to the server.
// Used by the template and all facades with composition pattern
type executor struct {
	name    string
	factory connection.IConnectionFactory
	metrics *metrics.Set
}

// execute is the helper used by every facade operation to run exactly one command.
// It borrows a connection, runs action on it, releases the connection and records
// the call in the template's metrics. Errors of action are returned wrapped with the
// command name, errors.Is and errors.As still match the original error.
func execute[T any](ctx context.Context, e *executor, cmd connection.Command, action func(conn connection.IConnection) (T, error)) (T, error) {
	var zero T

	conn, err := e.factory.GetConnection(ctx)
	if err != nil {
		e.countError(cmd)
		return zero, fmt.Errorf("%s: could not get connection: %w", cmd, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			Logger.Warningf("%s: could not release connection: %v", cmd, cerr)
		}
	}()

	start := time.Now()
	result, err := action(conn)
	e.record(cmd, start)

	if err != nil {
		e.countError(cmd)
		Logger.Debugf("%s failed: %v", cmd, err)
		return zero, fmt.Errorf("%s: %w", cmd, err)
	}
	return result, nil
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

func (e *executor) record(cmd connection.Command, start time.Time) {
	e.metrics.GetOrCreateCounter(fmt.Sprintf(`kvt_commands_total{template=%q,command=%q}`, e.name, cmd)).Inc()
	// blocking commands are counted but not timed
	if !cmd.Blocking() {
		e.metrics.GetOrCreateHistogram(fmt.Sprintf(`kvt_command_duration_seconds{template=%q,command=%q}`, e.name, cmd)).UpdateDuration(start)
	}
}

func (e *executor) countError(cmd connection.Command) {
	e.metrics.GetOrCreateCounter(fmt.Sprintf(`kvt_command_errors_total{template=%q,command=%q}`, e.name, cmd)).Inc()
}

// timeoutSeconds converts a timeout into the whole seconds expected by blocking commands.
// Sub-second precision is truncated.
func timeoutSeconds(timeout time.Duration) int64 {
	return int64(timeout / time.Second)
}
