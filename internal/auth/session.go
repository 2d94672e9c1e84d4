package auth

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Session is the cookie store shared by every API request of one
// application session. It plays the part the browser's cookie jar plays
// for a web client.
type Session struct {
	jar      *cookiejar.Jar
	base     *url.URL
	csrfName string
}

// NewSession creates an empty session for the API at baseURL. seed is an
// optional Cookie header ("csrftoken=...; sessionid=...") copied into the jar.
func NewSession(baseURL, csrfCookie, seed string) (*Session, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("session: parse base url: %w", err)
	}
	if csrfCookie == "" {
		csrfCookie = CSRFCookie
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("session: cookie jar: %w", err)
	}

	s := &Session{jar: jar, base: base, csrfName: csrfCookie}
	if seed != "" {
		cookies, err := http.ParseCookie(seed)
		if err != nil {
			return nil, fmt.Errorf("session: parse seed cookies: %w", err)
		}
		for _, c := range cookies {
			c.Path = "/"
		}
		jar.SetCookies(base, cookies)
	}
	return s, nil
}

// Jar is handed to the http.Client so responses can set cookies.
func (s *Session) Jar() http.CookieJar {
	return s.jar
}

// CookieHeader renders the cookies the jar would send to the API.
func (s *Session) CookieHeader() string {
	cookies := s.jar.Cookies(s.base)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// CSRFToken returns the anti-forgery token echoed on mutating requests.
func (s *Session) CSRFToken() string {
	return GetCookie(s.CookieHeader(), s.csrfName)
}

// Clear expires every cookie held for the API.
func (s *Session) Clear() {
	cookies := s.jar.Cookies(s.base)
	expired := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		expired = append(expired, &http.Cookie{Name: c.Name, Value: "", Path: "/", MaxAge: -1})
	}
	s.jar.SetCookies(s.base, expired)
}
