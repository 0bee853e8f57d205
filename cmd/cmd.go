package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/convoapp/convo/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var (
	baseURL   string
	configDir string
	proxyURL  string
	timeout   time.Duration
	debug     bool
	logFile   string

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "base-url",
			Usage:       "API root, overrides CONVO_BASE_URL",
			Destination: &baseURL,
		},
		cli.StringFlag{
			Name:        "config-dir",
			Usage:       "directory for the cookie store and device id, overrides CONVO_CONFIG_DIR",
			Destination: &configDir,
		},
		cli.StringFlag{
			Name:        "proxy",
			Usage:       "http, https or socks5 proxy URL, overrides CONVO_PROXY",
			Destination: &proxyURL,
		},
		cli.DurationFlag{
			Name:        "timeout",
			Usage:       "request timeout, overrides CONVO_TIMEOUT",
			Destination: &timeout,
		},
		cli.BoolFlag{
			Name:        "debug",
			Usage:       "log every request, overrides CONVO_DEBUG",
			Destination: &debug,
		},
		cli.StringFlag{
			Name:        "log-file",
			Usage:       "also write log lines to this file, overrides CONVO_LOG_FILE",
			Destination: &logFile,
		},
	}
)

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "convo",
		HelpName:              "convo",
		Usage:                 "Convo messaging client.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "convo [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "check whether the stored session is valid",
				Action:             status,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
			},
			{
				Name:                   "login",
				Usage:                  "sign in and store the session",
				Action:                 login,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            LoginDescription,
				UseShortOptionHandling: true,
				Flags:                  loginFlags,
			},
			{
				Name:               "logout",
				Usage:              "remove the stored session",
				Action:             logout,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        LogoutDescription,
				Flags:              logoutFlags,
			},
			{
				Name:               "otp",
				Usage:              "send or verify a one-time password",
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        OtpDescription,
				Subcommands: []cli.Command{
					{
						Name:      "send",
						Usage:     "send an OTP to a phone number",
						UsageText: "otp send <phone>",
						Action:    otpSend,
					},
					{
						Name:      "verify",
						Usage:     "verify an OTP",
						UsageText: "otp verify <phone> <code>",
						Action:    otpVerify,
					},
				},
			},
			{
				Name:                   "register",
				Usage:                  "create a new account",
				Action:                 register,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            RegisterDescription,
				UseShortOptionHandling: true,
				Flags:                  registerFlags,
			},
			{
				Name:               "ping",
				Usage:              "call the server's test endpoint",
				Action:             ping,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        PingDescription,
			},
			{
				Name:               "cookies",
				Aliases:            []string{"c"},
				Usage:              "inspect and manage stored cookies",
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        CookiesDescription,
				Subcommands: []cli.Command{
					{
						Name:   "list",
						Usage:  "list stored cookies without their values",
						Action: cookiesList,
					},
					{
						Name:   "clear",
						Usage:  "remove every stored cookie",
						Action: cookiesClear,
					},
					{
						Name:               "import",
						Usage:              "import cookies from a browser or cookies.txt",
						UsageText:          "cookies import [--host <host>] <file>",
						Description:        CookiesImportDescription,
						CustomHelpTemplate: CMD_HELP_TEMPL,
						OnUsageError:       common.UsageErrorCallback,
						Action:             cookiesImport,
						Flags:              importFlags,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of convo",
				UsageText:          "version",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
