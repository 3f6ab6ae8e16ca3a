// Package monitoring carries the module's redirectable diagnostic
// logger. Library packages report rare conditions through Logf so
// embedders can reroute or mute them without pulling in a logging
// framework.
package monitoring

import "log"

// Logf emits one diagnostic line. It defaults to log.Printf; replace
// it through SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
