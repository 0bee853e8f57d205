package cookies

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/convoapp/convo/pkg/cookiejar"
)

// chromeEpochOffset is the seconds between 1601-01-01 and 1970-01-01 UTC.
const chromeEpochOffset int64 = 11_644_473_600

type browserTable struct {
	query string
	// expiresMs converts the stored expiry column to Unix milliseconds.
	// Zero stays zero.
	expiresMs func(int64) int64
}

var firefoxTable = browserTable{
	query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly
		FROM moz_cookies WHERE host IN (?, ?) ORDER BY rowid`,
	expiresMs: func(sec int64) int64 { return sec * 1000 },
}

// Chrome keeps encrypted values in encrypted_value and leaves value empty;
// those rows are skipped.
var chromeTable = browserTable{
	query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
		FROM cookies WHERE host_key IN (?, ?) AND value != '' ORDER BY rowid`,
	expiresMs: func(usec int64) int64 {
		if usec == 0 {
			return 0
		}
		return usec/1000 - chromeEpochOffset*1000
	},
}

// readSQLite loads host's cookies from a browser database. dbPath must be a
// private copy; the browser may hold a lock on the original.
func readSQLite(dbPath, host string, t browserTable) ([]cookiejar.Cookie, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(t.query, host, "."+host)
	if err != nil {
		return nil, fmt.Errorf("query cookie database: %w", err)
	}
	defer rows.Close()

	var out []cookiejar.Cookie
	for rows.Next() {
		var (
			name, value, domain, path string
			expires                   int64
			secure, httpOnly          int
		)
		if err := rows.Scan(&name, &value, &domain, &path, &expires, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("scan cookie row: %w", err)
		}
		out = append(out, toJar(name, value, domain, path, t.expiresMs(expires), secure != 0, httpOnly != 0))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cookie rows: %w", err)
	}
	return out, nil
}

// toJar builds a jar cookie. expiresMs of zero means no expiry.
func toJar(name, value, domain, path string, expiresMs int64, secure, httpOnly bool) cookiejar.Cookie {
	if path == "" {
		path = "/"
	}
	if expiresMs == 0 {
		expiresMs = cookiejar.NoExpiry
	}
	return cookiejar.Cookie{
		Name:      name,
		Value:     value,
		Domain:    strings.ToLower(strings.TrimPrefix(domain, ".")),
		Path:      path,
		ExpiresAt: expiresMs,
		Secure:    secure,
		HttpOnly:  httpOnly,
	}
}
