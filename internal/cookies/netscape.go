package cookies

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/convoapp/convo/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// readNetscape loads host's cookies from a cookies.txt file. Lines are
// domain, subdomain flag, path, secure, expiry (seconds, 0 for session),
// name, value, separated by tabs. Malformed lines are skipped and counted.
func readNetscape(path, host string, l logger.Logger) ([]cookiejar.Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	var (
		out     []cookiejar.Cookie
		skipped int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		httpOnly := false
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, httpOnlyPrefix):
			httpOnly = true
			line = line[len(httpOnlyPrefix):]
		case strings.HasPrefix(line, "#"):
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			skipped++
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil || expiry < 0 {
			skipped++
			continue
		}
		domain := strings.ToLower(fields[0])
		if domain != host && domain != "."+host {
			continue
		}
		out = append(out, toJar(fields[5], fields[6], domain, fields[2], expiry*1000,
			strings.EqualFold(fields[3], "TRUE"), httpOnly))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	if skipped > 0 {
		l.Warning("cookies: skipped %d malformed lines in %s", skipped, path)
	}
	return out, nil
}
