package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.domain.org"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "no-at-sign", "@missing.local", "trailing@"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if ok, _ := ValidateUsername("alice_01"); !ok {
		t.Error("expected alice_01 to be valid")
	}
	if ok, _ := ValidateUsername("monitor-7"); !ok {
		t.Error("expected monitor-7 to be valid")
	}

	cases := []string{"ab", strings.Repeat("a", 31), "has space", "bad!char"}
	for _, username := range cases {
		if ok, reason := ValidateUsername(username); ok {
			t.Errorf("expected %q to be invalid", username)
		} else if reason == "" {
			t.Errorf("expected a reason for %q", username)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  alice\x00  "); got != "alice" {
		t.Errorf("unexpected sanitized value %q", got)
	}
}
