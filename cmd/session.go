package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/convoapp/convo/internal/config"
	"github.com/convoapp/convo/pkg/apiclient"
	"github.com/convoapp/convo/pkg/convoapi"
	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/credman/keyring"
	"github.com/convoapp/convo/pkg/credman/prefs"
	"github.com/convoapp/convo/pkg/logger"
)

// session is everything a command needs: config, logger, the open cookie
// store and the initialized factory.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	store   *prefs.SQLite
	factory *apiclient.Factory
}

var (
	loadConfig = config.Load
	resolveKey = keyring.ResolveKey
)

// newLogger writes to stderr and, when a log file is configured, to that
// file too.
func newLogger(cfg *config.Config) (logger.Logger, error) {
	console := logger.NewStandardLogger(log.New(os.Stderr, "convo: ", log.LstdFlags))
	console.SetVerbose(cfg.Debug)
	if cfg.LogFile == "" {
		return console, nil
	}
	file, err := logger.NewFileLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, file), nil
}

// currentConfig loads the environment and applies the global flags on top.
func currentConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if configDir != "" {
		dir, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.Dir = dir
	}
	if proxyURL != "" {
		cfg.Proxy = proxyURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	cfg.Debug = cfg.Debug || debug
	return cfg, nil
}

// masterKey prefers an explicit CONVO_COOKIE_KEY, then the OS keyring,
// then the key file in the config directory.
func masterKey(cfg *config.Config) ([]byte, error) {
	if cfg.CookieKey != "" {
		return keyring.ParseKey(cfg.CookieKey)
	}
	return resolveKey(keyring.NewKeyring(), keyring.NewFileKeyStore(cfg.Dir))
}

func openSession() (*session, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}
	l, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	key, err := masterKey(cfg)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("master key: %w", err)
	}
	store, err := prefs.OpenSQLite(cfg.Path(prefs.FileName), key, l)
	if err != nil {
		l.Close()
		return nil, err
	}
	f := &apiclient.Factory{}
	err = f.Init(apiclient.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Proxy:   cfg.Proxy,
		Store:   store,
		Logger:  l,
		Debug:   cfg.Debug,
	})
	if err != nil {
		store.Close()
		l.Close()
		return nil, err
	}
	return &session{cfg: cfg, log: l, store: store, factory: f}, nil
}

func (s *session) api() *convoapi.Client {
	return s.factory.MustAPI()
}

func (s *session) jar() *cookiejar.Jar {
	j, _ := s.factory.Jar()
	return j
}

func (s *session) Close() error {
	err := s.store.Close()
	s.log.Close()
	return err
}

// commandContext is cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
