package cmd

import (
	"fmt"

	"github.com/convoapp/convo/cmd/common"
	"github.com/urfave/cli"
)

func ping(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "ping", "open_session", err)
		return nil
	}
	defer s.Close()
	cctx, cancel := commandContext()
	defer cancel()
	msg, err := s.api().TestMessage(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "ping", "request", err)
		return nil
	}
	fmt.Println(msg)
	return nil
}
