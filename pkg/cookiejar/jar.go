// Package cookiejar is the session core of the Convo client: a persistent,
// encrypted-at-rest cookie jar for net/http.
//
// Cookies are kept per exact request host (no domain-suffix sharing) in
// insertion order. A cookie replaces any stored cookie of the same name on
// that host, so a server rotating CONVO_SESSION always wins over a value the
// client already holds. Every mutation rewrites the whole persisted set.
package cookiejar

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/convoapp/convo/pkg/credman/prefs"
	"github.com/convoapp/convo/pkg/logger"
)

// Prefs is the durable store the jar persists into. prefs.Store satisfies it.
type Prefs interface {
	All() (map[string][]string, error)
	Replace(entries map[string][]string) error
	Clear() error
}

// Jar implements http.CookieJar on top of a host keyed cookie store.
//
// One mutex guards the store and serialises persistence, so overlapping
// requests from the same http.Client can never write an older snapshot over
// a newer one. Persistence failures are logged and otherwise absorbed: the
// in-memory state stays authoritative for the life of the process.
type Jar struct {
	mu    sync.Mutex
	hosts map[string][]Cookie
	prefs Prefs
	now   func() time.Time
	log   logger.Logger
}

// Option configures a Jar.
type Option func(*Jar)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) { j.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(j *Jar) { j.log = logger.OrNop(l) }
}

// New creates a jar backed by p and loads whatever p already holds. A nil p
// gives a jar that forgets everything on exit.
func New(p Prefs, opts ...Option) *Jar {
	if p == nil {
		p = prefs.NewMemory()
	}
	j := &Jar{
		hosts: make(map[string][]Cookie),
		prefs: p,
		now:   time.Now,
		log:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.load()
	return j
}

func (j *Jar) nowMs() int64 {
	return j.now().UnixMilli()
}

func hostOf(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

func pathOf(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// SaveFromResponse stores the cookies a response to u delivered. Each cookie
// first evicts any stored cookie with the same name on that host; it is then
// kept only if it has not expired. The batch is persisted once.
func (j *Jar) SaveFromResponse(u *url.URL, cookies []Cookie) {
	host := hostOf(u)
	if host == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saveLocked(host, cookies)
}

// Import seeds host with cookies from another source (a browser profile,
// a test fixture) under the same rules as SaveFromResponse.
func (j *Jar) Import(host string, cookies []Cookie) {
	host = strings.ToLower(host)
	if host == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saveLocked(host, cookies)
}

func (j *Jar) saveLocked(host string, cookies []Cookie) {
	now := j.nowMs()
	list := j.hosts[host]
	for _, c := range cookies {
		list = removeNamed(list, c.Name)
		if c.Expired(now) {
			j.log.Debug("jar: %s removed from %s", c.Name, host)
			continue
		}
		if c.Domain == "" {
			c.Domain = host
		}
		if c.Path == "" {
			c.Path = "/"
		}
		list = append(list, c)
		j.log.Debug("jar: saved %s for %s", c, host)
	}
	j.hosts[host] = list
	j.persistLocked(now)
}

// LoadForRequest returns the cookies to send with a request to u: those not
// yet expired whose path is a prefix of u's path, in insertion order.
//
// Expired cookies found along the way are pruned from the host and the
// store is rewritten. Cookies that only fail the path test are kept.
func (j *Jar) LoadForRequest(u *url.URL) []Cookie {
	host := hostOf(u)
	reqPath := pathOf(u)

	j.mu.Lock()
	defer j.mu.Unlock()

	list, ok := j.hosts[host]
	if !ok {
		return nil
	}
	now := j.nowMs()
	live := make([]Cookie, 0, len(list))
	var out []Cookie
	for _, c := range list {
		if c.Expired(now) {
			continue
		}
		live = append(live, c)
		if c.MatchesPath(reqPath) {
			out = append(out, c)
		}
	}
	if len(live) != len(list) {
		j.log.Debug("jar: pruned %d expired cookies for %s", len(list)-len(live), host)
		j.hosts[host] = live
		j.persistLocked(now)
	}
	return out
}

// HasValidSession reports whether any host holds an unexpired session
// cookie. It is a read-only check and never prunes.
func (j *Jar) HasValidSession() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.nowMs()
	for _, list := range j.hosts {
		for _, c := range list {
			if c.IsSession() && !c.Expired(now) {
				return true
			}
		}
	}
	return false
}

// ClearCookies drops every cookie for every host and erases the store.
func (j *Jar) ClearCookies() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.hosts = make(map[string][]Cookie)
	if err := j.prefs.Clear(); err != nil {
		j.log.Error("jar: clear persisted cookies: %v", err)
		return
	}
	j.log.Info("jar: all cookies cleared")
}

// ClearSessionCookies drops only the session cookie, on every host.
func (j *Jar) ClearSessionCookies() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for host, list := range j.hosts {
		j.hosts[host] = removeNamed(list, SessionCookieName)
	}
	j.persistLocked(j.nowMs())
	j.log.Info("jar: session cookies cleared")
}

// Snapshot returns a copy of the store keyed by host.
func (j *Jar) Snapshot() map[string][]Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string][]Cookie, len(j.hosts))
	for host, list := range j.hosts {
		if len(list) == 0 {
			continue
		}
		out[host] = append([]Cookie(nil), list...)
	}
	return out
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	host := hostOf(u)
	now := j.now()
	converted := make([]Cookie, 0, len(cookies))
	for _, hc := range cookies {
		converted = append(converted, FromHTTP(hc, host, now))
	}
	j.SaveFromResponse(u, converted)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	stored := j.LoadForRequest(u)
	if len(stored) == 0 {
		return nil
	}
	out := make([]*http.Cookie, len(stored))
	for i, c := range stored {
		out[i] = c.HTTP()
	}
	return out
}

var _ http.CookieJar = (*Jar)(nil)

func removeNamed(list []Cookie, name string) []Cookie {
	out := list[:0:0]
	for _, c := range list {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
