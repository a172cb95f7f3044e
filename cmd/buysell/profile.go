package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var profile = cli.Command{
	Name:  "profile",
	Usage: "fetch the exchange profile of the user",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "lean",
			Usage: "skip fetching trades, KYCs and currencies",
		},
	},
	Action: profileAction,
}

var kyc = cli.Command{
	Name:   "kyc",
	Usage:  "list the KYC cases of the user",
	Action: kycListAction,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "refresh",
			Usage: "fetch KYC cases from the exchange partner",
		},
	},
	Subcommands: []*cli.Command{
		{
			Name:   "trigger",
			Usage:  "open a new KYC case",
			Action: kycTriggerAction,
		},
		{
			Name:   "open",
			Usage:  "get the newest KYC case or open a new one",
			Action: kycOpenAction,
		},
		{
			Name:  "poll",
			Usage: "poll the pending KYC case until approved",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "wait",
					Usage: "wait for the poll to settle",
				},
			},
			Action: kycPollAction,
		},
		{
			Name:   "poll-status",
			Usage:  "get the status of the running KYC poll",
			Action: kycPollStatusAction,
		},
		{
			Name:      "poll-level",
			Usage:     "wait until the KYC case completes and the user is verified",
			ArgsUsage: "<kyc id>",
			Action:    kycPollLevelAction,
		},
	},
}

func profileAction(ctx *cli.Context) error {
	return printGet("/v1/profile", url.Values{
		"lean": {strconv.FormatBool(ctx.Bool("lean"))},
	})
}

func kycListAction(ctx *cli.Context) error {
	return printGet("/v1/kycs", url.Values{
		"refresh": {strconv.FormatBool(ctx.Bool("refresh"))},
	})
}

func kycTriggerAction(ctx *cli.Context) error {
	return printPost("/v1/kycs", nil)
}

func kycOpenAction(ctx *cli.Context) error {
	return printGet("/v1/kycs/open", nil)
}

func kycPollAction(ctx *cli.Context) error {
	path := "/v1/kycs/poll"
	if ctx.Bool("wait") {
		path += "?wait=true"
	}
	return printPost(path, nil)
}

func kycPollStatusAction(ctx *cli.Context) error {
	return printGet("/v1/kycs/poll", nil)
}

func kycPollLevelAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	path := fmt.Sprintf("/v1/kycs/%s/poll-level", url.PathEscape(ctx.Args().First()))
	return printPost(path, nil)
}

func printPost(path string, body interface{}) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var res interface{}
	if err := client.post(path, body, &res); err != nil {
		return err
	}
	if res != nil {
		printRespJSON(res)
	}
	return nil
}
