package cookiejar

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	// SessionCookieName is the cookie the Convo API uses to carry the
	// authenticated session. Its unexpired presence on any host is what
	// HasValidSession reports.
	SessionCookieName = "CONVO_SESSION"

	// KeyPrefix prefixes every persisted per-host entry: "cookies_<host>".
	KeyPrefix = "cookies_"

	// NoExpiry marks a cookie without an explicit expiry.
	NoExpiry int64 = math.MaxInt64

	expiredNow int64 = math.MinInt64
)

// Cookie is one stored HTTP cookie. ExpiresAt is in Unix milliseconds.
type Cookie struct {
	Name      string
	Value     string
	Domain    string
	Path      string
	ExpiresAt int64
	Secure    bool
	HttpOnly  bool
}

// Expired reports whether the cookie's expiry lies strictly before nowMs.
func (c Cookie) Expired(nowMs int64) bool {
	return c.ExpiresAt < nowMs
}

// MatchesPath is a plain string-prefix test of the cookie path against the
// request path. It is not segment aware: a cookie for "/a" also matches "/ab".
func (c Cookie) MatchesPath(requestPath string) bool {
	return strings.HasPrefix(requestPath, c.Path)
}

// IsSession reports whether this is the Convo session cookie.
func (c Cookie) IsSession() bool {
	return c.Name == SessionCookieName
}

// String renders the cookie without its value so it is safe to log.
func (c Cookie) String() string {
	exp := "session"
	if c.ExpiresAt != NoExpiry {
		exp = time.UnixMilli(c.ExpiresAt).UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s (domain=%s path=%s expires=%s)", c.Name, c.Domain, c.Path, exp)
}

// GoString keeps %#v from printing the value as well.
func (c Cookie) GoString() string {
	return "cookiejar.Cookie{" + c.String() + "}"
}

// FromHTTP converts a cookie parsed from a Set-Cookie header. host is the
// request host and fills an empty Domain. Max-Age wins over Expires, as in
// RFC 6265; a negative Max-Age yields a cookie that is already expired.
func FromHTTP(hc *http.Cookie, host string, now time.Time) Cookie {
	c := Cookie{
		Name:      hc.Name,
		Value:     hc.Value,
		Domain:    strings.TrimPrefix(strings.ToLower(hc.Domain), "."),
		Path:      hc.Path,
		ExpiresAt: NoExpiry,
		Secure:    hc.Secure,
		HttpOnly:  hc.HttpOnly,
	}
	if c.Domain == "" {
		c.Domain = host
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/"
	}
	switch {
	case hc.MaxAge < 0:
		c.ExpiresAt = expiredNow
	case hc.MaxAge > 0:
		c.ExpiresAt = addMaxAge(now.UnixMilli(), int64(hc.MaxAge))
	case !hc.Expires.IsZero():
		c.ExpiresAt = hc.Expires.UnixMilli()
	}
	return c
}

// addMaxAge saturates at NoExpiry; Max-Age in seconds may exceed what a
// time.Duration or a millisecond timestamp can hold.
func addMaxAge(nowMs, maxAge int64) int64 {
	if maxAge > (NoExpiry-nowMs)/1000 {
		return NoExpiry
	}
	return nowMs + maxAge*1000
}

// HTTP returns the request form of the cookie; only name and value are sent.
func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{Name: c.Name, Value: c.Value}
}
