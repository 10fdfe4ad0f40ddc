package middleware

import "testing"

func TestNormalizePathCollapsesUnroutedPaths(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/messages", "/messages"},
		{"/ratelimit/check", "/ratelimit/check"},
		{"/supporters", "/supporters"},
		{"/wp-admin/setup-config.php", "/other"},
		{"/.env", "/other"},
		{"/messages/", "/other"},
		{"/messages/abc123", "/other"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.path, tt.want, got)
		}
	}
}
