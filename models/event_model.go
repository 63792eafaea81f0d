package models

import "time"

// Log levels carried on the session stream.
const (
	LogLevelInfo  = "INFO"
	LogLevelDebug = "DEBUG"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
)

// LogEvent is one progress event on a session's stream. Regular events
// carry time/level/message; the synthetic keep-alive carries only
// Type="heartbeat". Events are ephemeral and never persisted.
type LogEvent struct {
	Time    string `json:"time,omitempty"` // HH:MM:SS.mmm
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

func NewLogEvent(level, message string) LogEvent {
	return LogEvent{
		Time:    time.Now().Format("15:04:05.000"),
		Level:   level,
		Message: message,
	}
}

func HeartbeatEvent() LogEvent {
	return LogEvent{Type: "heartbeat"}
}

func (e LogEvent) IsHeartbeat() bool {
	return e.Type == "heartbeat"
}
