// Package monitoring holds the process-wide diagnostic log hook shared by
// the simulator packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with the yellow highlight used for degraded but
// non-fatal conditions (dropped rows, dropped rays, dropped datagrams).
func Warnf(format string, v ...interface{}) {
	Logf("\033[93m"+format+"\033[0m", v...)
}
