// Package monitoring is the diagnostic logging seam for the toolkit's
// long-running pieces (catalog migrations, the HTTP server).
package monitoring

import "log"

// Logf is where diagnostic output goes. It defaults to log.Printf;
// embedding code can redirect or silence it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil f installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
