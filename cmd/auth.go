package cmd

import (
	"errors"
	"fmt"

	"github.com/convoapp/convo/cmd/common"
	"github.com/convoapp/convo/internal/device"
	"github.com/convoapp/convo/pkg/convoapi"
	"github.com/urfave/cli"
)

var (
	username    string
	password    string
	email       string
	phone       string
	firstname   string
	lastname    string
	sessionOnly bool

	loginFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "username, u",
			Usage:       "account username",
			Destination: &username,
		},
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "account password",
			Destination: &password,
		},
	}

	logoutFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "session-only, s",
			Usage:       "remove only the session cookie (default: false)",
			Destination: &sessionOnly,
		},
	}

	registerFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "username, u",
			Usage:       "account username",
			Destination: &username,
		},
		cli.StringFlag{
			Name:        "email, e",
			Usage:       "email address",
			Destination: &email,
		},
		cli.StringFlag{
			Name:        "phone",
			Usage:       "phone number",
			Destination: &phone,
		},
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "account password",
			Destination: &password,
		},
		cli.StringFlag{
			Name:        "firstname",
			Usage:       "first name (optional)",
			Destination: &firstname,
		},
		cli.StringFlag{
			Name:        "lastname",
			Usage:       "last name (optional)",
			Destination: &lastname,
		},
	}
)

func login(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if username == "" || password == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("username and password are required"))
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "open_session", err)
		return nil
	}
	defer s.Close()

	info, err := device.New(nil, s.cfg.Dir).Describe(s.cfg.DeviceToken)
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "device", err)
		return nil
	}
	cctx, cancel := commandContext()
	defer cancel()
	resp, err := s.api().Login(cctx, convoapi.LoginRequest{
		Username:    username,
		Password:    password,
		DeviceModel: info.Model,
		DeviceOS:    info.OS,
		DeviceID:    info.ID,
		DeviceToken: info.Token,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "request", err)
		return nil
	}
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	if !s.factory.HasValidSession() {
		common.PrintRuntimeErr(ctx, "login", "session", errors.New("server did not set a session cookie"))
		return nil
	}
	fmt.Printf("logged in as %s\n", username)
	return nil
}

func logout(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "logout", "open_session", err)
		return nil
	}
	defer s.Close()
	if sessionOnly {
		s.factory.ClearSessionCookies()
		fmt.Println("session cookie removed")
		return nil
	}
	s.factory.ClearSession()
	fmt.Println("logged out")
	return nil
}

func otpSend(ctx *cli.Context) error {
	number := ctx.Args().First()
	if number == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("phone number is required"))
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "otp", "open_session", err)
		return nil
	}
	defer s.Close()
	cctx, cancel := commandContext()
	defer cancel()
	resp, err := s.api().SendOTP(cctx, number)
	if err != nil {
		common.PrintRuntimeErr(ctx, "otp", "send", err)
		return nil
	}
	printEnvelope(resp.Envelope, "otp sent")
	return nil
}

func otpVerify(ctx *cli.Context) error {
	number, code := ctx.Args().Get(0), ctx.Args().Get(1)
	if number == "" || code == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("phone number and code are required"))
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "otp", "open_session", err)
		return nil
	}
	defer s.Close()
	cctx, cancel := commandContext()
	defer cancel()
	resp, err := s.api().VerifyOTP(cctx, number, code)
	if err != nil {
		common.PrintRuntimeErr(ctx, "otp", "verify", err)
		return nil
	}
	printEnvelope(resp.Envelope, "otp verified")
	return nil
}

func register(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if username == "" || email == "" || phone == "" || password == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("username, email, phone and password are required"))
	}
	s, err := openSession()
	if err != nil {
		common.PrintRuntimeErr(ctx, "register", "open_session", err)
		return nil
	}
	defer s.Close()
	req := convoapi.RegisterRequest{
		Username:    username,
		Email:       email,
		PhoneNumber: phone,
		Password:    password,
	}
	if firstname != "" {
		req.Firstname = &firstname
	}
	if lastname != "" {
		req.Lastname = &lastname
	}
	cctx, cancel := commandContext()
	defer cancel()
	resp, err := s.api().Register(cctx, req)
	if err != nil {
		common.PrintRuntimeErr(ctx, "register", "request", err)
		return nil
	}
	printEnvelope(resp.Envelope, "registered")
	if resp.Data != nil {
		fmt.Printf("user id: %d\n", resp.Data.UserID)
	}
	return nil
}

func printEnvelope(e convoapi.Envelope, fallback string) {
	if e.Message != "" {
		fmt.Println(e.Message)
		return
	}
	fmt.Println(fallback)
}
