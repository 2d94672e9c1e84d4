package auth

import (
	"net/url"
	"regexp"
)

const (
	CSRFCookie = "csrftoken"
	CSRFHeader = "X-CSRFToken"
)

// GetCookie returns the decoded value of cookie name in a Cookie header
// string, or "" when it is not present. Values that fail to decode are
// returned as-is.
func GetCookie(cookieHeader, name string) string {
	re, err := regexp.Compile(`(?:^|; )` + regexp.QuoteMeta(name) + `=([^;]*)`)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(cookieHeader)
	if m == nil {
		return ""
	}
	v, err := url.PathUnescape(m[1])
	if err != nil {
		return m[1]
	}
	return v
}

// CSRFToken reads the csrftoken cookie from a Cookie header string.
func CSRFToken(cookieHeader string) string {
	return GetCookie(cookieHeader, CSRFCookie)
}
