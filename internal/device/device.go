// Package device describes the machine to the server at login.
package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const IDFileName = "device.id"

var hostname = os.Hostname

// Info is what login reports about this device.
type Info struct {
	Model string
	OS    string
	ID    string
	Token string
}

// Identity owns the persisted device id.
type Identity struct {
	fs  afero.Fs
	dir string
}

// New returns an Identity stored under dir on fsys. A nil fsys means the
// real filesystem.
func New(fsys afero.Fs, dir string) *Identity {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Identity{fs: fsys, dir: dir}
}

func (d *Identity) path() string {
	return filepath.Join(d.dir, IDFileName)
}

// ID returns the device id, creating and persisting a new random UUID on
// first use or when the stored one is unreadable.
func (d *Identity) ID() (string, error) {
	data, err := afero.ReadFile(d.fs, d.path())
	if err == nil {
		if id, perr := uuid.Parse(strings.TrimSpace(string(data))); perr == nil {
			return id.String(), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("device: read id: %w", err)
	}

	id := uuid.NewString()
	if err := d.fs.MkdirAll(d.dir, 0700); err != nil {
		return "", fmt.Errorf("device: %w", err)
	}
	if err := afero.WriteFile(d.fs, d.path(), []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("device: write id: %w", err)
	}
	return id, nil
}

// Reset forgets the stored id so the next ID call issues a new one.
func (d *Identity) Reset() error {
	err := d.fs.Remove(d.path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("device: %w", err)
	}
	return nil
}

// Describe gathers model, OS and id. token is passed through unchanged.
func (d *Identity) Describe(token string) (Info, error) {
	id, err := d.ID()
	if err != nil {
		return Info{}, err
	}
	return Info{
		Model: Model(),
		OS:    runtime.GOOS + "/" + runtime.GOARCH,
		ID:    id,
		Token: token,
	}, nil
}

// Model is "<os> <hostname>", or just the OS when the hostname is unknown.
func Model() string {
	h, err := hostname()
	if err != nil || h == "" {
		return runtime.GOOS
	}
	return runtime.GOOS + " " + h
}
