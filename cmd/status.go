package cmd

import (
	"fmt"

	"github.com/convoapp/convo/cmd/common"
	"github.com/convoapp/convo/internal/bootstrap"
	"github.com/urfave/cli"
)

func status(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "open_session", err)
		return nil
	}
	defer s.Close()

	checker := &bootstrap.Checker{
		Session: s.factory,
		Server:  s.api(),
		Timeout: s.cfg.Timeout,
		Logger:  s.log,
		OnTransition: func(from, to bootstrap.State) {
			s.log.Debug("status: %s -> %s", from, to)
		},
	}
	cctx, cancel := commandContext()
	defer cancel()
	res, err := checker.Run(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "check", err)
		checker.Wait()
		return nil
	}
	fmt.Printf("state: %s (%s)\n", res.State, res.Reason)
	if res.StatusCode != 0 {
		fmt.Printf("server status: %d\n", res.StatusCode)
	}
	if res.Err != nil {
		fmt.Printf("error: %v\n", res.Err)
	}
	if res.Cleared {
		fmt.Println("stored cookies were cleared")
	}
	return nil
}
