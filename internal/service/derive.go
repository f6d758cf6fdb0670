package service

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// deviceType classifies a user-agent string into the three coarse
// buckets the signup records keep. Tablets are checked first because
// tablet user agents usually also say "Mobile".
func deviceType(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return "Tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		return "Mobile"
	default:
		return "Desktop"
	}
}

// referrerDomain extracts the bare host from a referrer URL, dropping
// a leading "www.". Empty or unparseable referrers yield "".
func referrerDomain(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// emailDomain returns the part after the last "@".
func emailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return email[i+1:]
}

// regionFromIP is a deliberately coarse geography guess from the IP's
// first octet. It exists so the admin dashboard can show a rough split
// without calling a geolocation service.
func regionFromIP(ip string) (region, country string) {
	host := ip
	if h, _, err := net.SplitHostPort(ip); err == nil {
		host = h
	}
	parsed := net.ParseIP(host)
	if parsed == nil {
		return "Unknown", "Unknown"
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return "Local", "Local"
	}
	v4 := parsed.To4()
	if v4 == nil {
		return "International", "Unknown"
	}
	octet, _ := strconv.Atoi(strings.SplitN(v4.String(), ".", 2)[0])
	switch {
	case octet < 64:
		return "West", "United States"
	case octet < 128:
		return "Central", "United States"
	case octet < 192:
		return "East", "United States"
	default:
		return "International", "Unknown"
	}
}
