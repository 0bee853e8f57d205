package cookies

import (
	"fmt"
	"strings"
	"time"

	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/logger"
)

// Read returns host's unexpired cookies from the store at path, in the
// store's order. Cookies the jar could not reload, such as a value holding
// '|' or a name with spaces, are skipped.
func Read(path, host string, now time.Time, l logger.Logger) ([]cookiejar.Cookie, *Source, error) {
	l = logger.OrNop(l)
	host = strings.ToLower(host)
	if host == "" {
		return nil, nil, fmt.Errorf("cookies: empty host")
	}
	format, err := Detect(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cookies: %w", err)
	}
	src := &Source{Path: path, Format: format}

	var found []cookiejar.Cookie
	switch format {
	case FormatFirefox:
		found, err = readCopy(path, host, firefoxTable)
	case FormatChrome:
		found, err = readCopy(path, host, chromeTable)
	case FormatNetscape:
		found, err = readNetscape(path, host, l)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cookies: %s: %w", format, err)
	}

	nowMs := now.UnixMilli()
	out := found[:0]
	unstorable := 0
	for _, c := range found {
		if c.Expired(nowMs) {
			continue
		}
		if err := cookiejar.Storable(c); err != nil {
			unstorable++
			continue
		}
		out = append(out, c)
	}
	if unstorable > 0 {
		l.Warning("cookies: skipped %d cookies the jar cannot store", unstorable)
	}
	l.Debug("cookies: read %d cookies for %s from %s store", len(out), host, format)
	return out, src, nil
}

func readCopy(path, host string, t browserTable) ([]cookiejar.Cookie, error) {
	copied, cleanup, err := snapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return readSQLite(copied, host, t)
}

// Importer is the part of the jar an import writes into.
type Importer interface {
	Import(host string, cookies []cookiejar.Cookie)
}

// Import reads host's cookies from path into jar and returns how many were
// imported.
func Import(jar Importer, path, host string, l logger.Logger) (int, *Source, error) {
	found, src, err := Read(path, host, time.Now(), l)
	if err != nil {
		return 0, nil, err
	}
	if len(found) > 0 {
		jar.Import(strings.ToLower(host), found)
	}
	return len(found), src, nil
}
