package logging

import (
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{
			name:  "empty email",
			email: "",
			want:  "",
		},
		{
			name:  "normal email is hashed",
			email: "alice@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if tt.email == "" {
				if got != tt.want {
					t.Errorf("AnonymizeEmail(%q) = %q, want %q", tt.email, got, tt.want)
				}
				return
			}
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, expected user: prefix", tt.email, got)
			}
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail(%q) leaked the address", tt.email)
			}
		})
	}
}

func TestAnonymizeEmail_Deterministic(t *testing.T) {
	a := AnonymizeEmail("bob@example.com")
	b := AnonymizeEmail("bob@example.com")
	if a != b {
		t.Errorf("AnonymizeEmail is not deterministic: %q != %q", a, b)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "example.com"},
		{"", ""},
		{"not-an-email", ""},
		{"a@b@c", ""},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.email); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestErr_NilError(t *testing.T) {
	attr := Err(nil)
	// An empty group is omitted by slog; it must not render an error key.
	if attr.Value.Kind() != slog.KindGroup {
		t.Errorf("Err(nil) kind = %v, want group", attr.Value.Kind())
	}
}

func TestErr_NonNil(t *testing.T) {
	attr := Err(errTest)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

var errTest = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
