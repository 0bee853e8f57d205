// Package bootstrap decides at startup whether the stored session is usable.
//
// The check is local first: without a session cookie no request is made.
// With one, the server is asked once. An explicit rejection (503 or any
// status other than 200) clears the cookies; a transport failure does not,
// and only resolves this attempt to Unauthenticated.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/convoapp/convo/pkg/logger"
)

const DefaultTimeout = 30 * time.Second

var (
	// ErrAbandoned is returned by Run when ctx ended before a decision.
	ErrAbandoned = errors.New("bootstrap: check abandoned")
	ErrNoSession = errors.New("bootstrap: Session is required")
	ErrNoServer  = errors.New("bootstrap: Server is required")
)

// SessionStore is the local side of the check.
type SessionStore interface {
	HasValidSession() bool
	ClearSession()
}

// SessionServer performs the remote check. It returns the HTTP status, or
// an error when no response arrived.
type SessionServer interface {
	CheckSessionExpire(ctx context.Context) (int, error)
}

// Result is the resolved outcome of one check.
type Result struct {
	State  State
	Reason Reason
	// StatusCode is the server's answer, 0 when none was received.
	StatusCode int
	// Err is the transport error for ReasonTransport.
	Err error
	// Cleared reports whether the stored cookies were wiped.
	Cleared bool
}

func (r Result) Authenticated() bool {
	return r.State == Authenticated
}

// Checker runs the session check. Session and Server are required.
// A Checker must not be copied after first use.
type Checker struct {
	Session SessionStore
	Server  SessionServer
	// Timeout bounds the server request. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  logger.Logger
	// OnTransition, if set, observes every state change in order. It is
	// never called after Run has returned ErrAbandoned.
	OnTransition func(from, to State)

	inflight sync.WaitGroup
}

func (c *Checker) move(from, to State) {
	if c.OnTransition != nil {
		c.OnTransition(from, to)
	}
}

// Run performs the check.
//
// If ctx ends while the server request is in flight, Run returns
// ErrAbandoned at once and makes no decision. The request itself keeps
// going until it completes or times out, and a rejection that arrives
// later still clears the cookies. Use Wait to block until that happens.
func (c *Checker) Run(ctx context.Context) (Result, error) {
	if c.Session == nil {
		return Result{}, ErrNoSession
	}
	if c.Server == nil {
		return Result{}, ErrNoServer
	}
	if err := ctx.Err(); err != nil {
		return Result{}, ErrAbandoned
	}
	l := logger.OrNop(c.Logger)

	c.move(Start, LocalCheck)
	if !c.Session.HasValidSession() {
		c.move(LocalCheck, NoSession)
		c.move(NoSession, Unauthenticated)
		l.Debug("bootstrap: no local session, skipping server check")
		return Result{State: Unauthenticated, Reason: ReasonNoLocalSession}, nil
	}
	c.move(LocalCheck, ServerCheck)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	out := make(chan Result, 1)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		status, err := c.Server.CheckSessionExpire(reqCtx)
		out <- c.decide(l, status, err)
	}()

	select {
	case res := <-out:
		c.move(ServerCheck, res.State)
		return res, nil
	case <-ctx.Done():
		l.Debug("bootstrap: abandoned while waiting for server")
		return Result{}, ErrAbandoned
	}
}

// decide maps the server's answer to a result and applies the store
// effect. It runs whether or not anyone is still waiting for it.
func (c *Checker) decide(l logger.Logger, status int, err error) Result {
	if err != nil {
		l.Warning("bootstrap: session check failed, keeping local session: %v", err)
		return Result{State: Unauthenticated, Reason: ReasonTransport, Err: err}
	}
	switch status {
	case http.StatusOK:
		l.Info("bootstrap: session confirmed")
		return Result{State: Authenticated, Reason: ReasonConfirmed, StatusCode: status}
	case http.StatusServiceUnavailable:
		c.Session.ClearSession()
		l.Info("bootstrap: session expired, cookies cleared")
		return Result{State: Unauthenticated, Reason: ReasonExpired, StatusCode: status, Cleared: true}
	default:
		c.Session.ClearSession()
		l.Warning("bootstrap: unexpected status %d, cookies cleared", status)
		return Result{State: Unauthenticated, Reason: ReasonUnexpectedStatus, StatusCode: status, Cleared: true}
	}
}

// Wait blocks until every server request started by Run has finished and
// its store effect has been applied.
func (c *Checker) Wait() {
	c.inflight.Wait()
}

// Launch runs the check on its own goroutine and hands the result to
// deliver, unless ctx ends first, in which case deliver is never called.
// The returned channel closes once the goroutine and any request it left
// in flight have finished.
func (c *Checker) Launch(ctx context.Context, deliver func(Result)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer c.Wait()
		res, err := c.Run(ctx)
		if err != nil {
			if !errors.Is(err, ErrAbandoned) {
				logger.OrNop(c.Logger).Error("bootstrap: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		deliver(res)
	}()
	return done
}
