package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/convoapp/convo/pkg/convoapi"
	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/credman/prefs"
	"github.com/convoapp/convo/pkg/logger"
)

func TestAPIBeforeInit(t *testing.T) {
	var f Factory
	if _, err := f.API(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := f.Jar(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if f.HasValidSession() {
		t.Fatal("no session before Init")
	}
	f.ClearSession()
	f.ClearSessionCookies()
}

func TestMustAPIPanics(t *testing.T) {
	var f Factory
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("expected panic with ErrNotInitialized, got %v", r)
		}
	}()
	f.MustAPI()
}

func TestInitIsIdempotent(t *testing.T) {
	var f Factory
	if err := f.Init(Options{BaseURL: "https://one.convo.app"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	first := f.MustAPI()
	jar, _ := f.Jar()

	if err := f.Init(Options{BaseURL: "https://two.convo.app"}); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if f.MustAPI() != first {
		t.Fatal("second Init replaced the API client")
	}
	if j, _ := f.Jar(); j != jar {
		t.Fatal("second Init replaced the jar")
	}
	if got := first.BaseURL().Host; got != "one.convo.app" {
		t.Fatalf("base host = %s", got)
	}
}

func TestInitConcurrent(t *testing.T) {
	var f Factory
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.Init(Options{BaseURL: "https://api.convo.app"})
		}()
	}
	wg.Wait()
	if _, err := f.API(); err != nil {
		t.Fatalf("API: %v", err)
	}
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"empty base", Options{}, convoapi.ErrEmptyBaseURL},
		{"bad proxy", Options{BaseURL: "https://a", Proxy: "ftp://proxy:21"}, ErrUnsupportedScheme},
		{"invalid proxy", Options{BaseURL: "https://a", Proxy: "not a url"}, ErrInvalidProxyURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Factory
			if err := f.Init(tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("Init err = %v, want %v", err, tt.want)
			}
			if _, err := f.API(); !errors.Is(err, ErrNotInitialized) {
				t.Fatal("failed Init must leave the factory uninitialized")
			}
			if err := f.Init(Options{BaseURL: "https://a"}); err != nil {
				t.Fatalf("retry after failure: %v", err)
			}
		})
	}
}

func TestInitTimeout(t *testing.T) {
	var f Factory
	_ = f.Init(Options{BaseURL: "https://a"})
	hc, _ := f.HTTPClient()
	if hc.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %s, want %s", hc.Timeout, DefaultTimeout)
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: cookiejar.SessionCookieName, Value: "s-1", Path: "/", HttpOnly: true})
		io.WriteString(w, `{"status":200,"success":true,"message":"ok","data":{"sessionId":"s-1"}}`)
	})
	mux.HandleFunc("/api/v1/test/check-session-expire", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookiejar.SessionCookieName)
		sawCookie = err == nil && c.Value == "s-1"
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := prefs.NewMemory()
	log := logger.NewMockLogger()
	var f Factory
	if err := f.Init(Options{BaseURL: srv.URL, Store: store, Logger: log, Debug: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	api := f.MustAPI()

	if _, err := api.Login(context.Background(), convoapi.LoginRequest{Username: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !f.HasValidSession() {
		t.Fatal("login cookie not captured")
	}
	status, err := api.CheckSessionExpire(context.Background())
	if err != nil || status != http.StatusOK || !sawCookie {
		t.Fatalf("check: status=%d err=%v sawCookie=%v", status, err, sawCookie)
	}

	all, _ := store.All()
	if len(all) != 1 {
		t.Fatalf("expected one persisted host, got %v", all)
	}

	for _, line := range log.All() {
		if strings.Contains(line, "hunter2") || strings.Contains(line, "s-1") {
			t.Fatalf("secret leaked into log: %s", line)
		}
	}
	if len(log.DebugCalls) == 0 {
		t.Fatal("debug transport logged nothing")
	}

	f.ClearSessionCookies()
	if f.HasValidSession() {
		t.Fatal("session survived ClearSessionCookies")
	}
}

func TestSessionSurvivesNewFactory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: cookiejar.SessionCookieName, Value: "v", Path: "/"})
	}))
	defer srv.Close()

	store := prefs.NewMemory()
	var f1 Factory
	_ = f1.Init(Options{BaseURL: srv.URL, Store: store})
	if _, err := f1.MustAPI().Login(context.Background(), convoapi.LoginRequest{}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	var f2 Factory
	_ = f2.Init(Options{BaseURL: srv.URL, Store: store})
	if !f2.HasValidSession() {
		t.Fatal("session must reload from the store")
	}
	f2.ClearSession()
	if all, _ := store.All(); len(all) != 0 {
		t.Fatalf("ClearSession left %v", all)
	}
}
