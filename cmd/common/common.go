// Package common holds the helpers every convo command shares: help and
// version output, and the uniform "convo: cmd[action]: err" error line.
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
)

// VersionCmdStr is filled in by Execute with build information.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// Help shows the application help, or the help of the command named by
// the first argument.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	if err := showCommandHelp(ctx, arg); err != nil {
		return PrintErrWithHelp(ctx, err)
	}
	return nil
}

func GetVersion(ctx *cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints err as "<app>: cmd[action]: err". ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	fmt.Printf("%s: %s[%s]: %s\n", appName(ctx), cmd, action, err.Error())
}

// appName is the root application's name. Subcommands run in a nested app
// whose own name includes the parent command.
func appName(ctx *cli.Context) string {
	if ctx == nil {
		return os.Args[0]
	}
	root := ctx
	for root.Parent() != nil {
		root = root.Parent()
	}
	if root.App == nil || root.App.HelpName == "" {
		return os.Args[0]
	}
	return root.App.HelpName
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		if err := showCommandHelp(ctx, ctx.Command.Name); err != nil {
			fmt.Println(err.Error())
		}
	})
}

// PrintErrWithHelp prints err followed by the application help and exits 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		showAppHelpAndExit(ctx, 1)
	})
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	fmt.Printf("%s: %s\n\n", appName(ctx), err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook for the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Pad left-aligns s in a field of width n, truncating with "~" when s is
// longer.
func Pad(s string, n int) string {
	if len(s) > n {
		if n < 1 {
			return ""
		}
		return s[:n-1] + "~"
	}
	return s + strings.Repeat(" ", n-len(s))
}

// FormatExpiry renders a cookie expiry in Unix milliseconds. noExpiry is
// the sentinel for cookies that never expire.
func FormatExpiry(ms, noExpiry int64) string {
	if ms == noExpiry {
		return "never"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
