package engine

import "log"

// Logf is the diagnostic logger used by the tick loop and systems
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf, nil mutes logging
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
