package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	keyFileName = "cookie.key"
	keyFileMode = 0600
)

// FileKeyStore keeps the master key in a hex-encoded file readable only by
// the owner. Used when the OS keyring is unavailable (headless Linux,
// containers, CI).
type FileKeyStore struct {
	configDir string
}

var (
	fileRandRead = rand.Read
	fileReadFile = os.ReadFile
	fileRemove   = os.Remove
	fileRename   = os.Rename
	fileMkdirAll = os.MkdirAll
	fileTempFile = os.CreateTemp
)

func NewFileKeyStore(configDir string) *FileKeyStore {
	return &FileKeyStore{configDir: configDir}
}

// Path is the location of the key file.
func (f *FileKeyStore) Path() string {
	return filepath.Join(f.configDir, keyFileName)
}

// SetKey writes a new random key. The file is replaced atomically so an
// interrupted write never leaves a truncated key behind.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := fileMkdirAll(f.configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := fileRandRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	tmp, err := fileTempFile(f.configDir, ".cookie.key.tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = fileRemove(tmpPath) }

	if err := tmp.Chmod(keyFileMode); err != nil {
		tmp.Close()
		cleanup()
		return nil, fmt.Errorf("set permissions: %w", err)
	}
	if _, err := tmp.WriteString(hex.EncodeToString(key)); err != nil {
		tmp.Close()
		cleanup()
		return nil, fmt.Errorf("write key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := fileRename(tmpPath, f.Path()); err != nil {
		cleanup()
		return nil, fmt.Errorf("rename key file: %w", err)
	}
	return key, nil
}

func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := fileReadFile(f.Path())
	if err != nil {
		return nil, err
	}
	return ParseKey(strings.TrimSpace(string(data)))
}

func (f *FileKeyStore) DeleteKey() error {
	return fileRemove(f.Path())
}
