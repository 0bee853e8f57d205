// Package apiclient assembles the process-wide HTTP stack: the persistent
// cookie jar, the *http.Client that uses it and the typed API client on top.
package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/convoapp/convo/pkg/convoapi"
	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/logger"
)

const DefaultTimeout = 30 * time.Second

var ErrNotInitialized = errors.New("api client not initialized: call Init first")

type Options struct {
	BaseURL string
	// Timeout bounds a whole request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Proxy is an http, https or socks5 URL. Empty uses the environment.
	Proxy string
	// Store persists the cookie jar. Nil keeps cookies in memory only.
	Store  cookiejar.Prefs
	Logger logger.Logger
	// Debug logs every request line through Logger.
	Debug bool
}

// Factory builds the HTTP stack once and hands out the pieces. Its zero
// value is ready to use; Init must run before API.
type Factory struct {
	mu          sync.Mutex
	initialized bool
	jar         *cookiejar.Jar
	hc          *http.Client
	api         *convoapi.Client
	log         logger.Logger
}

// Init builds the jar, the HTTP client and the API client. Only the first
// successful call has any effect; later calls return nil without touching
// the existing instances, so there is never more than one jar.
func (f *Factory) Init(opts Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initialized {
		return nil
	}

	l := logger.OrNop(opts.Logger)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport, err := newTransport(opts.Proxy)
	if err != nil {
		return fmt.Errorf("apiclient: %w", err)
	}
	var rt http.RoundTripper = transport
	if opts.Debug {
		rt = &loggingTransport{next: transport, log: l, now: time.Now}
	}

	hc := &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
	api, err := convoapi.New(opts.BaseURL, hc)
	if err != nil {
		return fmt.Errorf("apiclient: %w", err)
	}
	jar := cookiejar.New(opts.Store, cookiejar.WithLogger(l))
	hc.Jar = jar

	f.jar, f.hc, f.api, f.log = jar, hc, api, l
	f.initialized = true
	l.Debug("apiclient: initialized for %s", api.BaseURL())
	return nil
}

// API returns the typed client, or ErrNotInitialized.
func (f *Factory) API() (*convoapi.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.initialized {
		return nil, ErrNotInitialized
	}
	return f.api, nil
}

// MustAPI is API for callers that treat a missing Init as a programming
// error. It panics with ErrNotInitialized.
func (f *Factory) MustAPI() *convoapi.Client {
	api, err := f.API()
	if err != nil {
		panic(err)
	}
	return api
}

func (f *Factory) Jar() (*cookiejar.Jar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.initialized {
		return nil, ErrNotInitialized
	}
	return f.jar, nil
}

func (f *Factory) HTTPClient() (*http.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.initialized {
		return nil, ErrNotInitialized
	}
	return f.hc, nil
}

func (f *Factory) currentJar() *cookiejar.Jar {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jar
}

// HasValidSession reports the jar's local session signal, false before Init.
func (f *Factory) HasValidSession() bool {
	if j := f.currentJar(); j != nil {
		return j.HasValidSession()
	}
	return false
}

// ClearSession removes every cookie. It is a no-op before Init.
func (f *Factory) ClearSession() {
	if j := f.currentJar(); j != nil {
		j.ClearCookies()
	}
}

// ClearSessionCookies removes only the session cookie. No-op before Init.
func (f *Factory) ClearSessionCookies() {
	if j := f.currentJar(); j != nil {
		j.ClearSessionCookies()
	}
}
