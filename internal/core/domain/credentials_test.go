package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCredential_IsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"zero expiry", time.Time{}, true},
		{"past", now.Add(-time.Second), true},
		{"exactly now", now, true},
		{"future", now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{ExpiresAt: tt.expiresAt}
			if got := c.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredential_NeedsRefresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	c := &Credential{ExpiresAt: now.Add(30 * time.Second)}
	if c.IsExpired(now) {
		t.Error("token should not be expired yet")
	}
	if !c.NeedsRefresh(now) {
		t.Error("token inside the refresh window should need refresh")
	}

	c.ExpiresAt = now.Add(10 * time.Minute)
	if c.NeedsRefresh(now) {
		t.Error("token well before expiry should not need refresh")
	}
}

func TestCredential_Rebind(t *testing.T) {
	now := time.Now()
	temp := &Credential{
		Key:          TempKeyPrefix + "abc",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    now.Add(time.Hour),
	}

	if !temp.IsTemporary() {
		t.Fatal("expected temporary credential")
	}

	bound := temp.Rebind("user-1", now)
	if bound.Key != "user-1" || bound.IsTemporary() {
		t.Errorf("expected bound key user-1, got %s", bound.Key)
	}
	if bound.AccessToken != "at" || bound.RefreshToken != "rt" {
		t.Error("tokens should carry over on rebind")
	}
	if temp.Key != TempKeyPrefix+"abc" {
		t.Error("rebind must not mutate the original")
	}
}

func TestCredential_JSONHidesTokens(t *testing.T) {
	c := &Credential{Key: "user-1", AccessToken: "secret-at", RefreshToken: "secret-rt"}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("tokens leaked into JSON: %s", data)
	}
}
