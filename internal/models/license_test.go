package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		expires string
		want    bool
	}{
		{"yesterday", now.AddDate(0, 0, -1).Format(time.DateOnly), true},
		{"tomorrow", now.AddDate(0, 0, 1).Format(time.DateOnly), false},
		{"today is local midnight", now.Format(time.DateOnly), true},
		{"never", ExpiresNever, false},
		{"never lowercase", "never", false},
		{"empty", "", false},
		{"garbage", "next tuesday", false},
		{"slash date", "17/09/2026", false},
		{"rfc3339 past", "2026-10-17T11:00:00Z", true},
		{"rfc3339 future", "2027-01-01T00:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.expires, now); got != tt.want {
				t.Errorf("IsExpired(%q) = %v, want %v", tt.expires, got, tt.want)
			}
		})
	}
}

func TestNeverNeverExpires(t *testing.T) {
	for _, year := range []int{1970, 2026, 9999} {
		now := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		if IsExpired(ExpiresNever, now) {
			t.Fatalf("Never expired in year %d", year)
		}
	}
}

func TestIsRecognizedExpires(t *testing.T) {
	if !IsRecognizedExpires("Never") {
		t.Error("expected Never to be recognized")
	}
	if !IsRecognizedExpires("2026-09-17") {
		t.Error("expected ISO date to be recognized")
	}
	if IsRecognizedExpires("soon") {
		t.Error("expected free text to be unrecognized")
	}
}

func TestUsernameKey(t *testing.T) {
	if UsernameKey("Kelloggs_") != UsernameKey("KELLOGGS_") {
		t.Fatal("expected case-insensitive keys to match")
	}
	if UsernameKey("petar") == UsernameKey("peter") {
		t.Fatal("expected different names to differ")
	}
}

func TestNewLicenseDefaults(t *testing.T) {
	t.Run("absent fields", func(t *testing.T) {
		lic := NewLicense("alice", nil, nil, "", "")
		if !lic.Valid {
			t.Error("expected valid to default to true")
		}
		if lic.Role != nil {
			t.Errorf("expected nil role, got %q", *lic.Role)
		}
		if lic.Expires != ExpiresNever {
			t.Errorf("expected expires %q, got %q", ExpiresNever, lic.Expires)
		}
		if lic.Notes != "" {
			t.Errorf("expected empty notes, got %q", lic.Notes)
		}
	})

	t.Run("explicit false", func(t *testing.T) {
		valid := false
		lic := NewLicense("alice", &valid, nil, "", "")
		if lic.Valid {
			t.Error("expected valid=false to be kept")
		}
	})

	t.Run("empty role is null", func(t *testing.T) {
		role := ""
		lic := NewLicense("alice", nil, &role, "", "")
		if lic.Role != nil {
			t.Error("expected empty role to be stored as null")
		}
	})
}

func TestUpdateLicenseRequestApply(t *testing.T) {
	role := "vip"
	base := &License{Username: "alice", Valid: true, Role: &role, Expires: "2030-01-01", Notes: "old"}

	t.Run("notes only", func(t *testing.T) {
		lic := base.Clone()
		var req UpdateLicenseRequest
		if err := json.Unmarshal([]byte(`{"username":"alice","notes":"new"}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		req.Apply(lic)

		if lic.Notes != "new" {
			t.Errorf("expected notes updated, got %q", lic.Notes)
		}
		if !lic.Valid || lic.Expires != "2030-01-01" || lic.Role == nil || *lic.Role != "vip" {
			t.Errorf("expected other fields untouched, got %+v", lic)
		}
	})

	t.Run("null role clears", func(t *testing.T) {
		lic := base.Clone()
		var req UpdateLicenseRequest
		if err := json.Unmarshal([]byte(`{"username":"alice","role":null}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		req.Apply(lic)

		if lic.Role != nil {
			t.Errorf("expected role cleared, got %q", *lic.Role)
		}
	})

	t.Run("valid false", func(t *testing.T) {
		lic := base.Clone()
		var req UpdateLicenseRequest
		if err := json.Unmarshal([]byte(`{"username":"alice","valid":false}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		req.Apply(lic)

		if lic.Valid {
			t.Error("expected valid=false")
		}
		if lic.Notes != "old" {
			t.Errorf("expected notes untouched, got %q", lic.Notes)
		}
	})
}
