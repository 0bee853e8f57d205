package prefs

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/convoapp/convo/pkg/credman/encryption"
	"github.com/convoapp/convo/pkg/logger"

	_ "modernc.org/sqlite"
)

// FileName is the default database file name inside the config directory.
const FileName = "convo_cookies.db"

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
    id    TEXT PRIMARY KEY,
    name  BLOB NOT NULL,
    value BLOB NOT NULL
)`

// SQLite is a Store encrypted at rest. Each row holds:
//
//	id    hex HMAC-SHA256 of the entry name (lookup without decryption)
//	name  AES-GCM ciphertext of the entry name
//	value AES-GCM ciphertext of the gob-encoded string set
//
// Neither host names nor cookie contents appear in the file in clear text.
type SQLite struct {
	db   *sql.DB
	keys *encryption.Keys
	log  logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path, protected by
// masterKey. The file is created with 0600 permissions.
func OpenSQLite(path string, masterKey []byte, l logger.Logger) (*SQLite, error) {
	keys, err := encryption.DeriveKeys(masterKey)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("create prefs file: %w", err)
	}
	f.Close()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open prefs database: %w", err)
	}
	// One connection serialises writers inside the process; busy_timeout
	// covers a second convo process touching the same file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create prefs schema: %w", err)
	}
	return &SQLite{db: db, keys: keys, log: logger.OrNop(l)}, nil
}

func (s *SQLite) All() (map[string][]string, error) {
	rows, err := s.db.Query(`SELECT id, name, value FROM prefs`)
	if err != nil {
		return nil, fmt.Errorf("query prefs: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	skipped := 0
	for rows.Next() {
		var (
			id          string
			name, value []byte
		)
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, fmt.Errorf("scan prefs row: %w", err)
		}
		k, vs, err := s.open(id, name, value)
		if err != nil {
			skipped++
			continue
		}
		out[k] = vs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prefs rows: %w", err)
	}
	if skipped > 0 {
		s.log.Warning("prefs: skipped %d unreadable entries", skipped)
	}
	return out, nil
}

func (s *SQLite) open(id string, name, value []byte) (string, []string, error) {
	plainName, err := encryption.DecryptValue(name, s.keys.Value)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt name: %w", err)
	}
	k := string(plainName)
	if encryption.KeyID(k, s.keys.ID) != id {
		return "", nil, fmt.Errorf("entry id mismatch")
	}
	plainValue, err := encryption.DecryptValue(value, s.keys.Value)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt value: %w", err)
	}
	var vs []string
	if err := gob.NewDecoder(bytes.NewReader(plainValue)).Decode(&vs); err != nil {
		return "", nil, fmt.Errorf("decode value: %w", err)
	}
	return k, vs, nil
}

func (s *SQLite) seal(k string, vs []string) (string, []byte, []byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toSet(vs)); err != nil {
		return "", nil, nil, err
	}
	name, err := encryption.EncryptValue([]byte(k), s.keys.Value)
	if err != nil {
		return "", nil, nil, err
	}
	value, err := encryption.EncryptValue(buf.Bytes(), s.keys.Value)
	if err != nil {
		return "", nil, nil, err
	}
	return encryption.KeyID(k, s.keys.ID), name, value, nil
}

// Replace deletes every row and inserts entries inside one transaction, so
// a crash mid-write leaves the previous content intact.
func (s *SQLite) Replace(entries map[string][]string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin prefs tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM prefs`); err != nil {
		return fmt.Errorf("clear prefs: %w", err)
	}
	for k, vs := range entries {
		id, name, value, serr := s.seal(k, vs)
		if serr != nil {
			err = fmt.Errorf("seal %s: %w", k, serr)
			return err
		}
		if _, err = tx.Exec(`INSERT INTO prefs (id, name, value) VALUES (?, ?, ?)`, id, name, value); err != nil {
			return fmt.Errorf("insert prefs row: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit prefs: %w", err)
	}
	return nil
}

func (s *SQLite) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM prefs`); err != nil {
		return fmt.Errorf("clear prefs: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
