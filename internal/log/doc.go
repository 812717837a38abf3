// Package log provides the application logger, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Configurable log levels with verbose mode support
//   - Consistent text formatting across the application
//   - Shortening of paths under the user's home directory to "~"
//
// # Path shortening
//
// Sounding archives usually live in an operator's home directory, and logs
// are often attached to bug reports or shared with other stations. The
// PathHandler rewrites string and error attribute values so that
// "/home/alice/iono/20200615_1030_iono.txt" is logged as
// "~/iono/20200615_1030_iono.txt".
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Debug("opened sounding", "path", path)
//	slog.SetDefault(logger)
package log
