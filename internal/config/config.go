// Package config loads the client configuration.
//
// Values come, lowest precedence first, from built-in defaults, the
// optional config.yaml in the config directory, and CONVO_ environment
// variables. CLI flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "https://api.convo.app/"
	DefaultDeviceToken = "placeholder_token"
	DefaultTimeout     = 30 * time.Second
	// FileName is the optional YAML file inside the config directory.
	FileName = "config.yaml"
	dirName  = "convo"
)

// Config holds every tunable of the client. Each field maps to one
// environment variable; CLI flags may override them afterwards.
type Config struct {
	// BaseURL is the API root. ENV: CONVO_BASE_URL
	BaseURL string `env:"CONVO_BASE_URL" yaml:"base_url"`
	// Dir holds the cookie database, key file and device id. ENV: CONVO_CONFIG_DIR
	Dir string `env:"CONVO_CONFIG_DIR" yaml:"-"`
	// Timeout bounds each request and the bootstrap check. ENV: CONVO_TIMEOUT
	Timeout time.Duration `env:"CONVO_TIMEOUT" yaml:"timeout"`
	// Proxy is an http, https or socks5 URL. ENV: CONVO_PROXY
	Proxy string `env:"CONVO_PROXY" yaml:"proxy"`
	// CookieKey is a hex master key that bypasses the keyring. It is never
	// read from the file. ENV: CONVO_COOKIE_KEY
	CookieKey string `env:"CONVO_COOKIE_KEY" yaml:"-"`
	// DeviceToken is the push token sent at login. ENV: CONVO_DEVICE_TOKEN
	DeviceToken string `env:"CONVO_DEVICE_TOKEN" yaml:"device_token"`
	// Debug enables request logging. ENV: CONVO_DEBUG
	Debug bool `env:"CONVO_DEBUG" yaml:"debug"`
	// LogFile, when set, receives a copy of every log line. ENV: CONVO_LOG_FILE
	LogFile string `env:"CONVO_LOG_FILE" yaml:"log_file"`
}

var (
	decode        = envdecode.Decode
	userConfigDir = os.UserConfigDir
	mkdirAll      = os.MkdirAll
	readFile      = os.ReadFile
)

// Load reads the config file and the environment and fills defaults. A
// missing file, or an environment with no CONVO_ variables, is not an error.
func Load() (*Config, error) {
	env := &Config{}
	if err := decode(env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: %w", err)
	}
	dir, err := resolveDir(env.Dir)
	if err != nil {
		return nil, err
	}
	cfg, err := loadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	cfg.merge(env)
	cfg.Dir = dir
	cfg.fill()
	return cfg, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		base, err := userConfigDir()
		if err != nil {
			return "", fmt.Errorf("config: locate user config dir: %w", err)
		}
		dir = filepath.Join(base, dirName)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return abs, nil
}

// loadFile decodes path, rejecting unknown keys. A missing file yields an
// empty Config.
func loadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %s: %w", FileName, err)
	}
	return cfg, nil
}

// merge copies every field set in o over c. A false Debug in o cannot turn
// off a true one in c.
func (c *Config) merge(o *Config) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Proxy != "" {
		c.Proxy = o.Proxy
	}
	if o.CookieKey != "" {
		c.CookieKey = o.CookieKey
	}
	if o.DeviceToken != "" {
		c.DeviceToken = o.DeviceToken
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	c.Debug = c.Debug || o.Debug
}

func (c *Config) fill() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DeviceToken == "" {
		c.DeviceToken = DefaultDeviceToken
	}
}

// EnsureDir creates the config directory, private to the current user.
func (c *Config) EnsureDir() error {
	if err := mkdirAll(c.Dir, 0700); err != nil {
		return fmt.Errorf("config: create %s: %w", c.Dir, err)
	}
	return nil
}

// Path joins name onto the config directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.Dir, name)
}
