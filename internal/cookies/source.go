// Package cookies seeds the cookie jar from a browser's cookie store: a
// Firefox cookies.sqlite, a Chrome Cookies database (unencrypted values
// only) or a Netscape cookies.txt.
//
// Only cookies whose domain is exactly the target host, with or without a
// leading dot, are imported. This mirrors how the jar keys cookies.
package cookies

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	FormatChrome
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "Firefox"
	case FormatChrome:
		return "Chrome"
	case FormatNetscape:
		return "Netscape"
	}
	return "unknown"
}

// Source describes where an import read from.
type Source struct {
	Path   string
	Format Format
}

var (
	ErrUnsupported = errors.New("unsupported cookie store")
	ErrEmpty       = errors.New("cookie store is empty")
)

var sqliteMagic = []byte("SQLite format 3\x00")

// Detect sniffs the file at path: SQLite databases are told apart by their
// cookie table, text files by the Netscape header line.
func Detect(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open cookie store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FormatUnknown, fmt.Errorf("stat cookie store: %w", err)
	}
	if info.IsDir() {
		return FormatUnknown, fmt.Errorf("%s is a directory: %w", path, ErrUnsupported)
	}
	if info.Size() == 0 {
		return FormatUnknown, ErrEmpty
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatUnknown, fmt.Errorf("read cookie store: %w", err)
	}
	head = head[:n]

	if bytes.HasPrefix(head, sqliteMagic) {
		return detectTable(path)
	}
	first, _, _ := strings.Cut(string(head), "\n")
	switch strings.TrimRight(first, "\r") {
	case "# Netscape HTTP Cookie File", "# HTTP Cookie File":
		return FormatNetscape, nil
	}
	return FormatUnknown, ErrUnsupported
}

func detectTable(path string) (Format, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return FormatUnknown, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	has := func(table string) bool {
		var name string
		return db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name) == nil
	}
	switch {
	case has("moz_cookies"):
		return FormatFirefox, nil
	case has("cookies"):
		return FormatChrome, nil
	}
	return FormatUnknown, ErrUnsupported
}
