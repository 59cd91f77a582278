package realtime

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent turns a raw User-Agent header into a short display name like
// "Chrome on Mac OS X", used only for connection logging.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
