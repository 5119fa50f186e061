package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession("admin", "abc123", now)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if !strings.HasPrefix(s.ID, SessionIDPrefix) {
		t.Errorf("ID should have prefix %q, got %q", SessionIDPrefix, s.ID)
	}
	if !IsValidSessionID(s.ID) {
		t.Errorf("ID %q is not valid", s.ID)
	}
	if s.Identity != "admin" || s.TokenHash != "abc123" {
		t.Errorf("unexpected session fields: %+v", s)
	}
	if !s.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, now)
	}
}

func TestGenerateSessionID_Unique(t *testing.T) {
	now := time.Now()
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID(now)
		if err != nil {
			t.Fatalf("GenerateSessionID() error = %v", err)
		}
		if ids[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		ids[id] = true
	}
}

func TestSession_Expired(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{CreatedAt: created}
	ttl := time.Hour

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just created", created, false},
		{"half way", created.Add(30 * time.Minute), false},
		{"exactly ttl", created.Add(ttl), false},
		{"one nanosecond past ttl", created.Add(ttl + time.Nanosecond), true},
		{"long after", created.Add(48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Expired(tt.now, ttl); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := s.ExpiresAt(ttl); !got.Equal(created.Add(ttl)) {
		t.Errorf("ExpiresAt() = %v", got)
	}
}

func TestIsValidSessionID(t *testing.T) {
	good, _ := GenerateSessionID(time.Now())

	tests := []struct {
		id   string
		want bool
	}{
		{good, true},
		{strings.ToUpper(good), true},
		{"", false},
		{"sgs-", false},
		{"tmss-01arz3ndektsv4rrffq69g5fav", false},
		{"sgs-not-a-ulid-at-all-xxxxxxxx", false},
	}

	for _, tt := range tests {
		if got := IsValidSessionID(tt.id); got != tt.want {
			t.Errorf("IsValidSessionID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
