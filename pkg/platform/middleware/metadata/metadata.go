package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"avelements/pkg/requestcontext"
)

// ClientMetadata extracts client IP address, User-Agent and a device display
// name from the request and adds them to the context for use by handlers and
// event sinks. This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua, DeviceName(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceName summarizes a User-Agent as "<browser> on <os>". Bots and
// unparseable agents yield a short generic name.
func DeviceName(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	parsed := useragent.New(ua)
	if parsed.Bot() {
		name, _ := parsed.Browser()
		if name == "" {
			return "bot"
		}
		return "bot: " + name
	}

	browser, _ := parsed.Browser()
	os := parsed.OSInfo().Name
	switch {
	case browser != "" && os != "":
		name := browser + " on " + os
		if parsed.Mobile() {
			name += " (mobile)"
		}
		return name
	case browser != "":
		return browser
	case os != "":
		return os
	}
	return "unknown"
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port", or "[::1]:port" for IPv6.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}
