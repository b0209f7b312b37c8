package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// HeartbeatStatusActive is the only status recorded for heartbeats.
const HeartbeatStatusActive = "active"

// UnknownVersion is stored when a client does not report its version.
const UnknownVersion = "unknown"

// HeartbeatTimeFormat is RFC 3339 in UTC with millisecond precision.
const HeartbeatTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// HeartbeatEvent is one "active" ping received from a running client.
type HeartbeatEvent struct {
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Version   string `json:"version"`
	Status    string `json:"status"`
}

// NewHeartbeatEvent creates an active heartbeat stamped at now.
// An empty version is recorded as UnknownVersion.
func NewHeartbeatEvent(username, version string, now time.Time) HeartbeatEvent {
	if version == "" {
		version = UnknownVersion
	}
	return HeartbeatEvent{
		Timestamp: now.UTC().Format(HeartbeatTimeFormat),
		Username:  username,
		Version:   version,
		Status:    HeartbeatStatusActive,
	}
}

// HeartbeatRequest is the body of POST /heartbeat.
type HeartbeatRequest struct {
	Name    string  `json:"name" form:"name"`
	Version *string `json:"version,omitempty" form:"version"`
}

// UnmarshalJSON accepts any JSON value for version. Strings are taken as is;
// numbers, booleans and composites keep their compact JSON text, so
// {"version": 1.6} records "1.6". Null or absent leaves Version nil.
func (r *HeartbeatRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string          `json:"name"`
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Name = raw.Name
	r.Version = nil

	v := bytes.TrimSpace(raw.Version)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		r.Version = &s
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return err
	}
	s := buf.String()
	r.Version = &s
	return nil
}

// HeartbeatAck acknowledges a recorded heartbeat. Version echoes the raw
// request value and is omitted when the client sent none.
type HeartbeatAck struct {
	Status  string  `json:"status"`
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}
