package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/convoapp/convo/cmd/common"
	"github.com/convoapp/convo/internal/cookies"
	"github.com/convoapp/convo/pkg/cookiejar"
	"github.com/urfave/cli"
)

var (
	importHost string

	importFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "host",
			Usage:       "host whose cookies are imported (default: the API host)",
			Destination: &importHost,
		},
	}
)

func cookiesList(ctx *cli.Context) error {
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "open_session", err)
		return nil
	}
	defer s.Close()

	snap := s.jar().Snapshot()
	if len(snap) == 0 {
		fmt.Println("no cookies stored")
		return nil
	}
	hosts := make([]string, 0, len(snap))
	for h := range snap {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	txt := "------------------------------------------------------------------\n"
	txt += fmt.Sprintf("|%s|%s|%s|%s|\n",
		beaut("Name", 20), beaut("Path", 12), beaut("Expires", 18), beaut("Flags", 10))
	txt += "|--------------------|------------|------------------|----------|\n"
	for _, h := range hosts {
		txt += fmt.Sprintf("| %s\n", h)
		for _, c := range snap[h] {
			txt += fmt.Sprintf("|%s|%s|%s|%s|\n",
				beaut(c.Name, 20),
				beaut(c.Path, 12),
				beaut(common.FormatExpiry(c.ExpiresAt, cookiejar.NoExpiry), 18),
				beaut(cookieFlags(c), 10),
			)
		}
	}
	txt += "------------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}

func beaut(s string, n int) string {
	return " " + common.Pad(s, n-1)
}

func cookieFlags(c cookiejar.Cookie) string {
	var f []string
	if c.IsSession() {
		f = append(f, "S")
	}
	if c.Secure {
		f = append(f, "sec")
	}
	if c.HttpOnly {
		f = append(f, "http")
	}
	return strings.Join(f, ",")
}

func cookiesClear(ctx *cli.Context) error {
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "open_session", err)
		return nil
	}
	defer s.Close()
	s.jar().ClearCookies()
	fmt.Println("cookies cleared")
	return nil
}

func cookiesImport(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("cookie file is required"))
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "open_session", err)
		return nil
	}
	defer s.Close()

	host := importHost
	if host == "" {
		host = s.api().BaseURL().Hostname()
	}
	n, src, err := cookies.Import(s.jar(), path, host, s.log)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cookies", "import", err)
		return nil
	}
	fmt.Printf("imported %d cookies for %s from %s store\n", n, strings.ToLower(host), src.Format)
	return nil
}
