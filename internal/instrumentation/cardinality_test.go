package instrumentation

import "testing"

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"plain address", "jane@example.com", "example.com"},
		{"gmail", "user@gmail.com", "gmail.com"},
		{"subdomain", "test@analytics.example.com", "analytics.example.com"},
		{"no at sign", "invalid", "unknown"},
		{"empty", "", "unknown"},
		{"bare at sign", "@", "unknown"},
		{"missing domain", "user@", "unknown"},
		{"two at signs", "a@b@c", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractUserDomain(tt.email); got != tt.want {
				t.Errorf("ExtractUserDomain(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}
