package models

import (
	"strings"
)

// EventKind is the hook-relevant classification of a host log line.
type EventKind string

const (
	EventUnknown   EventKind = ""
	EventChat      EventKind = "chat"
	EventConnected EventKind = "connected"
	EventMatchEnd  EventKind = "match_end"
)

// LogEvent is a structured log line forwarded by the host. Player fields are
// empty when the host sent null or omitted them.
type LogEvent struct {
	Action          string `json:"action" validate:"required"`
	Server          string `json:"server,omitempty"`
	TimestampMs     int64  `json:"timestamp_ms,omitempty"`
	RelativeTimeMs  int64  `json:"relative_time_ms,omitempty"`
	Raw             string `json:"raw,omitempty"`
	LineWithoutTime string `json:"line_without_time,omitempty"`
	PlayerName1     string `json:"player_name_1,omitempty"`
	PlayerID1       string `json:"player_id_1,omitempty"`
	PlayerName2     string `json:"player_name_2,omitempty"`
	PlayerID2       string `json:"player_id_2,omitempty"`
	Weapon          string `json:"weapon,omitempty"`
	Message         string `json:"message,omitempty"`
	SubContent      string `json:"sub_content,omitempty"`
}

// UnmarshalJSON tolerates string-encoded timestamps.
func (e *LogEvent) UnmarshalJSON(data []byte) error {
	type Alias LogEvent
	return flexUnmarshal(data, (*Alias)(e))
}

// Kind classifies the event from its action, e.g. "CHAT[Allies][Unit]",
// "CONNECTED", "MATCH ENDED".
func (e *LogEvent) Kind() EventKind {
	action := strings.ToUpper(strings.TrimSpace(e.Action))
	switch {
	case strings.HasPrefix(action, "CHAT"):
		return EventChat
	case action == "CONNECTED":
		return EventConnected
	case strings.HasPrefix(action, "MATCH ENDED"):
		return EventMatchEnd
	default:
		return EventUnknown
	}
}

// ChatText returns the chat content with surrounding whitespace removed.
func (e *LogEvent) ChatText() string {
	return strings.TrimSpace(e.SubContent)
}
