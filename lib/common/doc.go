// Package common holds the client configuration and the logging setup shared by
// the library packages and the command line client.
//
// All packages log through dragonboat's logger registry:
//
//	var Logger = logger.GetLogger("template")
//
// InitLoggers installs the custom "LEVEL | package | message" format and applies
// one level to all loggers named in LoggerNames.
package common
