// Package cmd implements the command-line interface kvt. It exposes the typed
// template facades as subcommands that run against a redis server or the
// in-memory backend.
//
// The package is organized into two subpackages:
//
//   - kv: Data commands (list, set, hash, zset, value, props) and the perf tool
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kvt -help for a list of all commands.
package cmd
