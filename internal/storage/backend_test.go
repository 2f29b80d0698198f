package storage

import "testing"

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{"file", File, false},
		{"memory", Memory, false},
		{"", 0, true},
		{"SQLite", 0, true},
		{"postgres", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBackend(%q) expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBackend(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBackendStringRoundTrip(t *testing.T) {
	for _, b := range []Backend{SQLite, File, Memory} {
		parsed, err := ParseBackend(b.String())
		if err != nil {
			t.Errorf("ParseBackend(%q) failed: %v", b.String(), err)
			continue
		}
		if parsed != b {
			t.Errorf("round trip of %s gave %s", b, parsed)
		}
	}
}

func TestBackendComplement(t *testing.T) {
	if c, ok := SQLite.Complement(); !ok || c != File {
		t.Errorf("SQLite.Complement() = %s, %v; want file, true", c, ok)
	}
	if c, ok := File.Complement(); !ok || c != SQLite {
		t.Errorf("File.Complement() = %s, %v; want sqlite, true", c, ok)
	}
	if _, ok := Memory.Complement(); ok {
		t.Error("Memory.Complement() expected no complement")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUser, "user"},
		{KindPlayer, "player"},
		{KindOrganizer, "organizer"},
		{KindVenue, "venue"},
		{KindBooking, "booking"},
		{KindNotification, "notification"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpInsert, "insert"},
		{OpUpdate, "update"},
		{OpDelete, "delete"},
		{Op(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
