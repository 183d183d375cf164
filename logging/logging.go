// Package logging contains data types for the `caplink:logging` capability.
package logging

// OpWriteLog requests a log write on behalf of an actor.
const OpWriteLog = "WriteLog"

// Log levels carried in WriteLogRequest.Level.
const (
	LevelOff uint32 = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// WriteLogRequest is a request to write a log entry attributed to an actor.
// Use this when logs are pulled or aggregated per actor by the host.
type WriteLogRequest struct {
	Level uint32 `cbor:"level"`
	Body  string `cbor:"body"`
}
