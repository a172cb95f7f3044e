package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
)

const secretLength = 32

var webhooks = cli.Command{
	Name:  "webhooks",
	Usage: "list the webhooks registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "event",
			Usage: "the event to filter hooks by",
		},
	},
	Action: listWebhooksAction,
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add a webhook registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the endpoint where to notify the webhook",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event for which the webhook gets notified, * for all",
					Value: "*",
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the eventual secret to authenticate requests",
				},
				&cli.BoolFlag{
					Name:  "gen-secret",
					Usage: "generate a random secret to authenticate requests",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:      "remove",
			Usage:     "remove a webhook",
			ArgsUsage: "<hook id>",
			Action:    removeWebhookAction,
		},
	},
}

var events = cli.Command{
	Name:  "events",
	Usage: "list the latest UI events",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "since",
			Usage: "return only events with greater sequence number",
		},
	},
	Action: eventsAction,
}

var tickers = cli.Command{
	Name:      "tickers",
	Usage:     "list indicative prices, or the one of the given pair",
	ArgsUsage: "[<base> <quote>]",
	Action:    tickersAction,
}

func listWebhooksAction(ctx *cli.Context) error {
	query := url.Values{}
	if event := ctx.String("event"); event != "" {
		query.Set("event", event)
	}
	return printGet("/v1/webhooks", query)
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	secret := ctx.String("secret")
	if secret == "" && ctx.Bool("gen-secret") {
		secret = randstr.Hex(secretLength)
	}

	body := map[string]string{
		"event":    ctx.String("event"),
		"endpoint": ctx.String("endpoint"),
		"secret":   secret,
	}
	res := struct {
		ID string `json:"id"`
	}{}
	if err := client.post("/v1/webhooks", body, &res); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("hook id:", res.ID)
	if ctx.Bool("gen-secret") && ctx.String("secret") == "" {
		fmt.Println("secret:", secret)
	}
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	id := ctx.Args().First()
	if err := client.delete("/v1/webhooks/" + url.PathEscape(id)); err != nil {
		return err
	}
	fmt.Println("removed hook", id)
	return nil
}

func eventsAction(ctx *cli.Context) error {
	return printGet("/v1/events", url.Values{
		"since": {strconv.FormatUint(ctx.Uint64("since"), 10)},
	})
}

func tickersAction(ctx *cli.Context) error {
	switch ctx.NArg() {
	case 0:
		return printGet("/v1/tickers", nil)
	case 2:
		path := fmt.Sprintf(
			"/v1/tickers/%s/%s",
			url.PathEscape(ctx.Args().Get(0)), url.PathEscape(ctx.Args().Get(1)),
		)
		return printGet(path, nil)
	default:
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
}
