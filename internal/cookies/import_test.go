package cookies

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/credman/prefs"
	"github.com/convoapp/convo/pkg/logger"
)

type row struct {
	Name     string
	Value    string
	Host     string
	Path     string
	Expiry   int64
	Secure   int
	HttpOnly int
}

func createFirefoxDB(t *testing.T, rows []row) string {
	t.Helper()
	return createDB(t, "cookies.sqlite", `CREATE TABLE moz_cookies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL, value TEXT NOT NULL, host TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '/', expiry INTEGER NOT NULL DEFAULT 0,
		isSecure INTEGER NOT NULL DEFAULT 0, isHttpOnly INTEGER NOT NULL DEFAULT 0)`,
		`INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rows)
}

func createChromeDB(t *testing.T, rows []row) string {
	t.Helper()
	return createDB(t, "Cookies", `CREATE TABLE cookies (
		creation_utc INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL, value TEXT NOT NULL, host_key TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '/', expires_utc INTEGER NOT NULL DEFAULT 0,
		is_secure INTEGER NOT NULL DEFAULT 0, is_httponly INTEGER NOT NULL DEFAULT 0,
		encrypted_value BLOB DEFAULT '')`,
		`INSERT INTO cookies (name, value, host_key, path, expires_utc, is_secure, is_httponly) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rows)
}

func createDB(t *testing.T, name, schema, insert string, rows []row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(insert, r.Name, r.Value, r.Host, r.Path, r.Expiry, r.Secure, r.HttpOnly); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func writeNetscape(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func chromeTime(tm time.Time) int64 {
	return (tm.Unix() + chromeEpochOffset) * 1_000_000
}

var now = time.Unix(1_700_000_000, 0)

func TestDetect(t *testing.T) {
	ff := createFirefoxDB(t, nil)
	ch := createChromeDB(t, nil)
	ns := writeNetscape(t, "# Netscape HTTP Cookie File\n")
	other := writeNetscape(t, "hello world\n")
	empty := writeNetscape(t, "")

	tests := []struct {
		path string
		want Format
		err  error
	}{
		{ff, FormatFirefox, nil},
		{ch, FormatChrome, nil},
		{ns, FormatNetscape, nil},
		{other, FormatUnknown, ErrUnsupported},
		{empty, FormatUnknown, ErrEmpty},
		{t.TempDir(), FormatUnknown, ErrUnsupported},
	}
	for _, tt := range tests {
		got, err := Detect(tt.path)
		if got != tt.want || !errors.Is(err, tt.err) {
			t.Errorf("Detect(%s) = %s, %v; want %s, %v", filepath.Base(tt.path), got, err, tt.want, tt.err)
		}
	}
	if _, err := Detect(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadFirefox(t *testing.T) {
	future := now.Add(time.Hour).Unix()
	path := createFirefoxDB(t, []row{
		{"CONVO_SESSION", "s1", ".api.convo.app", "/", future, 1, 1},
		{"theme", "dark", "api.convo.app", "/app", future, 0, 0},
		{"parent", "x", ".convo.app", "/", future, 0, 0},
		{"sub", "x", "eu.api.convo.app", "/", future, 0, 0},
		{"old", "x", "api.convo.app", "/", now.Add(-time.Hour).Unix(), 0, 0},
	})

	got, src, err := Read(path, "API.convo.app", now, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if src.Format != FormatFirefox {
		t.Fatalf("format = %s", src.Format)
	}
	if len(got) != 2 {
		t.Fatalf("expected exact-host, unexpired cookies only, got %v", got)
	}
	want := cookiejar.Cookie{Name: "CONVO_SESSION", Value: "s1", Domain: "api.convo.app", Path: "/", ExpiresAt: future * 1000, Secure: true, HttpOnly: true}
	if got[0] != want {
		t.Fatalf("got %#v\nwant %#v", got[0], want)
	}
	if got[1].Name != "theme" || got[1].Path != "/app" {
		t.Fatalf("unexpected second cookie %v", got[1])
	}
}

func TestReadChrome(t *testing.T) {
	future := now.Add(time.Hour)
	path := createChromeDB(t, []row{
		{"CONVO_SESSION", "s1", "api.convo.app", "/", chromeTime(future), 1, 1},
		{"encrypted", "", "api.convo.app", "/", chromeTime(future), 0, 0},
		{"session", "v", ".api.convo.app", "/", 0, 0, 0},
	})

	got, _, err := Read(path, "api.convo.app", now, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cookies, got %v", got)
	}
	if got[0].ExpiresAt != future.UnixMilli() {
		t.Fatalf("expires = %d, want %d", got[0].ExpiresAt, future.UnixMilli())
	}
	if got[1].ExpiresAt != cookiejar.NoExpiry {
		t.Fatalf("zero expiry should mean no expiry, got %d", got[1].ExpiresAt)
	}
}

func TestReadNetscape(t *testing.T) {
	future := now.Add(time.Hour).Unix()
	content := fmt.Sprintf("# Netscape HTTP Cookie File\n"+
		"# comment\n"+
		"#HttpOnly_.api.convo.app\tTRUE\t/\tTRUE\t%d\tCONVO_SESSION\ts1\n"+
		"api.convo.app\tFALSE\t/\tFALSE\t0\tlang\ten\n"+
		"api.convo.app\tFALSE\t/\tFALSE\t%d\tpiped\ta|b\n"+
		"other.app\tFALSE\t/\tFALSE\t%d\tx\ty\n"+
		"broken line\n"+
		"api.convo.app\tFALSE\t/\tFALSE\tsoon\tbad\tv\n",
		future, future, future)
	path := writeNetscape(t, content)
	log := logger.NewMockLogger()

	got, src, err := Read(path, "api.convo.app", now, log)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if src.Format != FormatNetscape {
		t.Fatalf("format = %s", src.Format)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cookies, got %v", got)
	}
	if !got[0].HttpOnly || !got[0].Secure || got[0].Domain != "api.convo.app" {
		t.Fatalf("unexpected flags %v", got[0])
	}
	if got[1].ExpiresAt != cookiejar.NoExpiry {
		t.Fatal("expiry 0 should mean no expiry")
	}
	if len(log.WarningCalls) != 2 {
		t.Fatalf("expected warnings for malformed lines and unstorable value, got %v", log.WarningCalls)
	}
	for _, line := range log.All() {
		if strings.Contains(line, "s1") || strings.Contains(line, "a|b") {
			t.Fatalf("cookie value leaked into log: %s", line)
		}
	}
}

func TestReadSkipsUnstorable(t *testing.T) {
	future := now.Add(time.Hour).Unix()
	path := createFirefoxDB(t, []row{
		{"CONVO_SESSION", "s1", "api.convo.app", "/", future, 1, 1},
		{"two words", "x", "api.convo.app", "/", future, 0, 0},
		{"semi;colon", "x", "api.convo.app", "/", future, 0, 0},
		{"padded", " x ", "api.convo.app", "/", future, 0, 0},
		{"relative", "x", "api.convo.app", "app", future, 0, 0},
		{"piped", "a|b", "api.convo.app", "/", future, 0, 0},
	})
	log := logger.NewMockLogger()

	got, _, err := Read(path, "api.convo.app", now, log)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 || got[0].Name != "CONVO_SESSION" {
		t.Fatalf("expected only the session cookie, got %v", got)
	}
	if len(log.WarningCalls) != 1 || !strings.Contains(log.WarningCalls[0], "skipped 5") {
		t.Fatalf("expected one warning counting 5 skips, got %v", log.WarningCalls)
	}

	// Everything Read returns must come back from the persisted form.
	for _, c := range got {
		if _, err := cookiejar.Parse(cookiejar.Serialize(c), "api.convo.app"); err != nil {
			t.Fatalf("imported cookie does not reload: %v", err)
		}
	}
}

func TestSnapshotCopiesCompanions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cookies.sqlite")
	for _, p := range []string{src, src + "-wal"} {
		if err := os.WriteFile(p, []byte("data"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	dst, cleanup, err := snapshot(src)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := os.Stat(dst + "-wal"); err != nil {
		t.Fatalf("wal not copied: %v", err)
	}
	cleanup()
	if _, err := os.Stat(filepath.Dir(dst)); !os.IsNotExist(err) {
		t.Fatal("cleanup left the temp dir behind")
	}
}

func TestSnapshotTempDirFailure(t *testing.T) {
	orig := mkdirTemp
	defer func() { mkdirTemp = orig }()
	mkdirTemp = func(string, string) (string, error) { return "", errors.New("no space") }

	if _, _, err := snapshot("whatever"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImportIntoJar(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	path := createFirefoxDB(t, []row{
		{"CONVO_SESSION", "s1", "api.convo.app", "/", future, 1, 1},
		{"theme", "dark", "api.convo.app", "/", future, 0, 0},
	})
	jar := cookiejar.New(prefs.NewMemory())

	n, src, err := Import(jar, path, "api.convo.app", nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 || src.Format != FormatFirefox {
		t.Fatalf("imported %d from %v", n, src)
	}
	if !jar.HasValidSession() {
		t.Fatal("imported session cookie not visible")
	}
}

func TestReadEmptyHost(t *testing.T) {
	if _, _, err := Read("x", "", now, nil); err == nil {
		t.Fatal("expected error for empty host")
	}
}
