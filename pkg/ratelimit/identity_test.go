package ratelimit

import (
	"net/http/httptest"
	"testing"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first_forwarded_for_entry",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded_for_with_spaces",
			headers: map[string]string{"X-Forwarded-For": "  203.0.113.7  "},
			want:    "203.0.113.7",
		},
		{
			name:    "falls_back_to_real_ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			want:    "198.51.100.4",
		},
		{
			name: "forwarded_for_wins_over_real_ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7",
				"X-Real-IP":       "198.51.100.4",
			},
			want: "203.0.113.7",
		},
		{
			name:    "empty_forwarded_for_falls_through",
			headers: map[string]string{"X-Forwarded-For": " , 10.0.0.1"},
			want:    UnknownClient,
		},
		{
			name:    "no_headers_pools_into_unknown",
			headers: nil,
			want:    UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientKey(r); got != tt.want {
				t.Errorf("ClientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
