package apiclient

import (
	"net/http"
	"time"

	"github.com/convoapp/convo/pkg/logger"
)

// loggingTransport logs one line per request. The query string is never
// logged because login sends credentials there, and neither are headers.
type loggingTransport struct {
	next http.RoundTripper
	log  logger.Logger
	now  func() time.Time
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := t.now()
	target := req.URL.Scheme + "://" + req.URL.Host + req.URL.EscapedPath()
	resp, err := t.next.RoundTrip(req)
	elapsed := t.now().Sub(start)
	if err != nil {
		t.log.Warning("http: %s %s failed after %s: %v", req.Method, target, elapsed, err)
		return nil, err
	}
	t.log.Debug("http: %s %s -> %d (%s)", req.Method, target, resp.StatusCode, elapsed)
	return resp, nil
}
