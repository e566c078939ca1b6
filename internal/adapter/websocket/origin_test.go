package websocket

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckOrigin(t *testing.T) {
	allowed := []string{"https://dash.example.com/live", "http://lab.local:8080"}

	tests := []struct {
		name          string
		allowed       []string
		origin        string
		isDevelopment bool
		want          bool
	}{
		{"empty origin", allowed, "", false, true},
		{"listed origin", allowed, "https://dash.example.com", false, true},
		{"listed origin different case", allowed, "HTTPS://Dash.Example.com", false, true},
		{"listed origin with port", allowed, "http://lab.local:8080", false, true},

		{"different host", allowed, "https://evil.com", false, false},
		{"different port", allowed, "https://dash.example.com:9090", false, false},
		{"http instead of https", allowed, "http://dash.example.com", false, false},
		{"subdomain", allowed, "https://sub.dash.example.com", false, false},

		{"localhost dev", allowed, "http://localhost:3000", true, true},
		{"127.0.0.1 dev", allowed, "http://127.0.0.1:5000", true, true},
		{"localhost prod rejected", allowed, "http://localhost:3000", false, false},

		{"wildcard allows anything", []string{"*"}, "https://anywhere.example", false, true},
		{"wildcard among others", []string{"https://a.example", "*"}, "https://b.example", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCheckOrigin(tt.allowed, tt.isDevelopment)
			r, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checker(r))
		})
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{"full URL with path", "https://example.com/dashboard", "https://example.com"},
		{"URL with port", "https://example.com:8443/path", "https://example.com:8443"},
		{"uppercase", "HTTP://LOCALHOST:5000", "http://localhost:5000"},
		{"empty string", "", ""},
		{"no host", "mailto:user@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOrigin(tt.rawURL))
		})
	}
}
