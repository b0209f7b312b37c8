package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ExpiresNever is the sentinel expiry value for licenses that do not expire.
const ExpiresNever = "Never"

// usernameFolder folds usernames for case-insensitive comparison.
var usernameFolder = cases.Fold()

// License is a single license record keyed by username.
type License struct {
	Username string  `json:"username"`
	Valid    bool    `json:"valid"`
	Role     *string `json:"role"`
	Expires  string  `json:"expires"`
	Notes    string  `json:"notes"`
}

// NewLicense creates a License applying the defaults for absent fields:
// valid unless explicitly false, no role, never expiring, empty notes.
func NewLicense(username string, valid *bool, role *string, expires, notes string) *License {
	lic := &License{
		Username: username,
		Valid:    valid == nil || *valid,
		Expires:  expires,
		Notes:    notes,
	}
	if role != nil && *role != "" {
		r := *role
		lic.Role = &r
	}
	if lic.Expires == "" {
		lic.Expires = ExpiresNever
	}
	return lic
}

// Clone returns a deep copy of the license.
func (l *License) Clone() *License {
	c := *l
	if l.Role != nil {
		r := *l.Role
		c.Role = &r
	}
	return &c
}

// Key returns the case-folded username used for lookups and uniqueness.
func (l *License) Key() string {
	return UsernameKey(l.Username)
}

// ExpiresOrNever returns the stored expiry, or ExpiresNever when empty.
func (l *License) ExpiresOrNever() string {
	if l.Expires == "" {
		return ExpiresNever
	}
	return l.Expires
}

// IsExpired reports whether the license expiry lies strictly before now.
func (l *License) IsExpired(now time.Time) bool {
	return IsExpired(l.Expires, now)
}

// UsernameKey folds a username so that lookups ignore case.
func UsernameKey(username string) string {
	return usernameFolder.String(username)
}

// ParseExpires parses an expiry value. It accepts YYYY-MM-DD dates, which are
// taken as local midnight, and RFC 3339 timestamps. The sentinel "Never",
// empty values and anything unparseable report ok=false.
func ParseExpires(expires string) (time.Time, bool) {
	s := strings.TrimSpace(expires)
	if s == "" || strings.EqualFold(s, ExpiresNever) {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// IsExpired reports whether expires names an instant strictly before now.
// Values that do not parse as a date never expire.
func IsExpired(expires string, now time.Time) bool {
	t, ok := ParseExpires(expires)
	if !ok {
		return false
	}
	return now.After(t)
}

// IsRecognizedExpires reports whether expires is "Never" or a parseable date.
func IsRecognizedExpires(expires string) bool {
	if strings.EqualFold(strings.TrimSpace(expires), ExpiresNever) {
		return true
	}
	_, ok := ParseExpires(expires)
	return ok
}

// LicenseStatus is the result of checking a username against the store.
type LicenseStatus struct {
	Username string
	Valid    bool
	// Reason is set for negative results: ReasonNotFound or ReasonExpired.
	Reason  string
	Role    *string
	Expires string
}

// License check reasons.
const (
	ReasonNotFound = "not_found"
	ReasonExpired  = "expired"
)

// CreateLicenseRequest represents a request to add a license.
type CreateLicenseRequest struct {
	Username string  `json:"username" form:"username"`
	Valid    *bool   `json:"valid,omitempty" form:"valid"`
	Role     *string `json:"role,omitempty" form:"role"`
	Expires  string  `json:"expires,omitempty" form:"expires"`
	Notes    string  `json:"notes,omitempty" form:"notes"`
}

// UpdateLicenseRequest represents a partial update of a license. Only fields
// present in the request body are applied.
type UpdateLicenseRequest struct {
	Username string           `json:"username" form:"username"`
	Valid    Optional[bool]   `json:"valid" form:"valid"`
	Role     Optional[string] `json:"role" form:"role"`
	Expires  Optional[string] `json:"expires" form:"expires"`
	Notes    Optional[string] `json:"notes" form:"notes"`
}

// Apply overwrites the fields of lic that are present in the request.
// A null role clears the role; null for any other field is ignored.
func (r *UpdateLicenseRequest) Apply(lic *License) {
	if v, ok := r.Valid.Value(); ok {
		lic.Valid = v
	}
	if r.Role.Set {
		if v, ok := r.Role.Value(); ok {
			lic.Role = &v
		} else {
			lic.Role = nil
		}
	}
	if v, ok := r.Expires.Value(); ok {
		lic.Expires = v
	}
	if v, ok := r.Notes.Value(); ok {
		lic.Notes = v
	}
}
