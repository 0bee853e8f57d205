package bootstrap

// State is a step of the session check.
type State int

const (
	Start State = iota
	LocalCheck
	NoSession
	ServerCheck
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case LocalCheck:
		return "local-check"
	case NoSession:
		return "no-session"
	case ServerCheck:
		return "server-check"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Authenticated || s == Unauthenticated
}

// Reason explains how a check ended.
type Reason int

const (
	// ReasonConfirmed: the server accepted the session.
	ReasonConfirmed Reason = iota
	// ReasonNoLocalSession: nothing to check, no request was made.
	ReasonNoLocalSession
	// ReasonExpired: the server answered 503. Cookies were cleared.
	ReasonExpired
	// ReasonUnexpectedStatus: any other status. Cookies were cleared.
	ReasonUnexpectedStatus
	// ReasonTransport: no response (network error or timeout). Cookies kept.
	ReasonTransport
)

func (r Reason) String() string {
	switch r {
	case ReasonConfirmed:
		return "session confirmed by server"
	case ReasonNoLocalSession:
		return "no local session"
	case ReasonExpired:
		return "session expired"
	case ReasonUnexpectedStatus:
		return "unexpected server status"
	case ReasonTransport:
		return "server unreachable"
	}
	return "unknown"
}
