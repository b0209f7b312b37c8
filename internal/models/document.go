package models

import "encoding/json"

const (
	// MaxHeartbeats is the number of heartbeat events retained in a document.
	MaxHeartbeats = 1000
	// HeartbeatHistorySize is the number of events returned by the history endpoint.
	HeartbeatHistorySize = 50
)

// SeedExpires is the expiry assigned to the seed licenses.
const SeedExpires = "2026-09-17"

// LicenseDocument is the persisted root object: all licenses and the
// bounded heartbeat log.
type LicenseDocument struct {
	Licenses  []*License       `json:"licenses"`
	Heartbeat []HeartbeatEvent `json:"heartbeat"`
}

// NewLicenseDocument returns an empty document.
func NewLicenseDocument() *LicenseDocument {
	return &LicenseDocument{
		Licenses:  []*License{},
		Heartbeat: []HeartbeatEvent{},
	}
}

// SeedDocument returns the document written on first startup.
func SeedDocument() *LicenseDocument {
	doc := NewLicenseDocument()
	doc.Licenses = append(doc.Licenses,
		&License{Username: "petar", Valid: true, Expires: SeedExpires, Notes: "Admin account"},
		&License{Username: "Kelloggs_", Valid: true, Expires: SeedExpires, Notes: "Regular account"},
	)
	return doc
}

// UnmarshalJSON decodes a document, normalizing missing arrays to empty ones.
func (d *LicenseDocument) UnmarshalJSON(data []byte) error {
	type plain LicenseDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = LicenseDocument(p)
	d.normalize()
	return nil
}

// MarshalJSON always encodes both arrays, never null.
func (d *LicenseDocument) MarshalJSON() ([]byte, error) {
	type plain LicenseDocument
	d.normalize()
	return json.Marshal((*plain)(d))
}

func (d *LicenseDocument) normalize() {
	if d.Licenses == nil {
		d.Licenses = []*License{}
	}
	if d.Heartbeat == nil {
		d.Heartbeat = []HeartbeatEvent{}
	}
	kept := d.Licenses[:0]
	for _, l := range d.Licenses {
		if l != nil {
			kept = append(kept, l)
		}
	}
	d.Licenses = kept
}

// FindLicense returns the index of the first license whose username matches
// case-insensitively, or -1.
func (d *LicenseDocument) FindLicense(username string) int {
	key := UsernameKey(username)
	for i, l := range d.Licenses {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// AddLicense appends lic. The caller checks uniqueness with FindLicense.
func (d *LicenseDocument) AddLicense(lic *License) {
	d.Licenses = append(d.Licenses, lic)
}

// RemoveLicense deletes the license at index i, preserving order.
func (d *LicenseDocument) RemoveLicense(i int) *License {
	removed := d.Licenses[i]
	d.Licenses = append(d.Licenses[:i], d.Licenses[i+1:]...)
	return removed
}

// AppendHeartbeat appends an event and evicts the oldest entries so that at
// most MaxHeartbeats remain.
func (d *LicenseDocument) AppendHeartbeat(event HeartbeatEvent) {
	d.Heartbeat = append(d.Heartbeat, event)
	if over := len(d.Heartbeat) - MaxHeartbeats; over > 0 {
		d.Heartbeat = append([]HeartbeatEvent(nil), d.Heartbeat[over:]...)
	}
}

// RecentHeartbeats returns up to n of the newest events, oldest first.
func (d *LicenseDocument) RecentHeartbeats(n int) []HeartbeatEvent {
	start := len(d.Heartbeat) - n
	if start < 0 {
		start = 0
	}
	out := make([]HeartbeatEvent, len(d.Heartbeat)-start)
	copy(out, d.Heartbeat[start:])
	return out
}
