package trafficcount

import "log"

// Logf is the package diagnostic logger used by the counter and report
// sinks.  It defaults to log.Printf and may be replaced by SetLogger
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger.  Passing nil mutes logging
func SetLogger(f func(format string, v ...interface{})) {

	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}

	Logf = f
}
