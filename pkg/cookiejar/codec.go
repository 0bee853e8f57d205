package cookiejar

import (
	"errors"
	"strconv"
	"strings"
)

// ParseError describes a persisted cookie record that could not be decoded.
// It never carries the record itself, which may hold a session secret.
type ParseError struct {
	Host   string
	Reason string
}

func (e *ParseError) Error() string {
	return "malformed cookie record for " + e.Host + ": " + e.Reason
}

// Serialize encodes c in the persisted record format:
//
//	name=value|domain=<d>|path=<p>|expires=<ms>|secure=<bool>|httpOnly=<bool>
func Serialize(c Cookie) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	b.WriteString("|domain=")
	b.WriteString(c.Domain)
	b.WriteString("|path=")
	b.WriteString(c.Path)
	b.WriteString("|expires=")
	b.WriteString(strconv.FormatInt(c.ExpiresAt, 10))
	b.WriteString("|secure=")
	b.WriteString(strconv.FormatBool(c.Secure))
	b.WriteString("|httpOnly=")
	b.WriteString(strconv.FormatBool(c.HttpOnly))
	return b.String()
}

// Parse decodes one record written by Serialize. Fields other than
// name=value are optional and fall back to: domain = host, path = "/",
// expires = NoExpiry, secure = httpOnly = false. An unreadable expires
// value also falls back to NoExpiry.
func Parse(record, host string) (Cookie, error) {
	if record == "" {
		return Cookie{}, &ParseError{Host: host, Reason: "empty record"}
	}
	parts := strings.Split(record, "|")
	name, value, _ := strings.Cut(parts[0], "=")

	c := Cookie{
		Name:      name,
		Value:     value,
		Domain:    host,
		Path:      "/",
		ExpiresAt: NoExpiry,
	}
	for _, part := range parts[1:] {
		switch {
		case strings.HasPrefix(part, "domain="):
			c.Domain = strings.TrimPrefix(part, "domain=")
		case strings.HasPrefix(part, "path="):
			c.Path = strings.TrimPrefix(part, "path=")
		case strings.HasPrefix(part, "expires="):
			ms, err := strconv.ParseInt(strings.TrimPrefix(part, "expires="), 10, 64)
			if err != nil {
				ms = NoExpiry
			}
			c.ExpiresAt = ms
		case strings.HasPrefix(part, "secure="):
			c.Secure = strings.EqualFold(strings.TrimPrefix(part, "secure="), "true")
		case strings.HasPrefix(part, "httpOnly="):
			c.HttpOnly = strings.EqualFold(strings.TrimPrefix(part, "httpOnly="), "true")
		}
	}

	if reason := validate(c); reason != "" {
		return Cookie{}, &ParseError{Host: host, Reason: reason}
	}
	return c, nil
}

func validate(c Cookie) string {
	switch {
	case c.Name == "":
		return "empty name"
	case strings.TrimSpace(c.Name) != c.Name || strings.ContainsAny(c.Name, " \t;,"):
		return "invalid name"
	case strings.TrimSpace(c.Value) != c.Value:
		return "value is not trimmed"
	case c.Domain == "":
		return "empty domain"
	case !strings.HasPrefix(c.Path, "/"):
		return "path must start with /"
	}
	return ""
}

// Storable returns a non-nil error when c would not survive a Serialize
// and Parse round trip. The error names the field, never its content.
func Storable(c Cookie) error {
	switch {
	case strings.ContainsAny(c.Name, "=|"):
		return errors.New("invalid name")
	case strings.Contains(c.Value, "|"):
		return errors.New("value contains '|'")
	case strings.Contains(c.Domain, "|"):
		return errors.New("invalid domain")
	case strings.Contains(c.Path, "|"):
		return errors.New("invalid path")
	}
	if reason := validate(c); reason != "" {
		return errors.New(reason)
	}
	return nil
}

// ParseAll decodes every record for host. Records that fail to parse are
// reported in errs and left out of cookies; one bad record never prevents
// the others from loading.
func ParseAll(records []string, host string) (cookies []Cookie, errs []error) {
	for _, r := range records {
		c, err := Parse(r, host)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, errs
}
