package pageview

import (
	"net"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"

	"github.com/penlight/blog-api-core/internal/pageview/entity"
)

// Device is the descriptor derived from the User-Agent string. OS and
// Browser stay empty when the parser has nothing to offer.
type Device struct {
	Type    string
	OS      string
	Browser string
}

// ParseDevice classifies a user-agent string. Anything unparseable
// degrades to type unknown rather than failing the record operation.
func ParseDevice(rawUA string) Device {
	if strings.TrimSpace(rawUA) == "" {
		return Device{Type: entity.DeviceUnknown}
	}
	ua := useragent.Parse(rawUA)

	deviceType := entity.DeviceUnknown
	switch {
	case ua.Mobile:
		deviceType = entity.DeviceMobile
	case ua.Tablet:
		deviceType = entity.DeviceTablet
	case ua.Desktop:
		deviceType = entity.DeviceDesktop
	case ua.OS != "":
		// no device class but a recognized OS is most likely a desktop
		deviceType = entity.DeviceDesktop
	}

	return Device{
		Type:    deviceType,
		OS:      strings.TrimSpace(ua.OS + " " + ua.OSVersion),
		Browser: strings.TrimSpace(ua.Name + " " + ua.Version),
	}
}

// ClientIP derives the caller address, preferring forwarding headers over
// the transport peer: X-Forwarded-For (first entry), X-Real-IP,
// CF-Connecting-IP, then RemoteAddr, else "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		return cf
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
