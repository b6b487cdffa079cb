package pageview

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/penlight/blog-api-core/internal/pageview/entity"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "desktop chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: entity.DeviceDesktop,
		},
		{
			name: "iphone safari",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: entity.DeviceMobile,
		},
		{
			name: "ipad safari",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			want: entity.DeviceTablet,
		},
		{
			name: "empty",
			ua:   "",
			want: entity.DeviceUnknown,
		},
		{
			name: "gibberish",
			ua:   "not-a-real-agent",
			want: entity.DeviceUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDevice(tt.ua)
			assert.Equal(t, tt.want, d.Type)
		})
	}
}

func TestParseDeviceFillsOSAndBrowser(t *testing.T) {
	d := ParseDevice("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, d.OS, "Windows")
	assert.Contains(t, d.Browser, "Chrome")
}

func TestClientIP(t *testing.T) {
	newReq := func(headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/page-views", nil)
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	r := newReq(map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "198.51.100.2"})
	assert.Equal(t, "203.0.113.7", ClientIP(r))

	r = newReq(map[string]string{"X-Real-IP": "198.51.100.2"})
	assert.Equal(t, "198.51.100.2", ClientIP(r))

	r = newReq(map[string]string{"CF-Connecting-IP": "203.0.113.9"})
	assert.Equal(t, "203.0.113.9", ClientIP(r))

	// httptest requests carry a RemoteAddr of 192.0.2.1:1234
	r = newReq(nil)
	assert.Equal(t, "192.0.2.1", ClientIP(r))
}
