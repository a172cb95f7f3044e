package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var quote = cli.Command{
	Name:  "quote",
	Usage: "get a quote for the given amount",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to quote, negative for a sell",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "the currency of the amount",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "quote-currency",
			Usage:    "the currency to quote the amount in",
			Required: true,
		},
	},
	Action: quoteAction,
}

var rate = cli.Command{
	Name:  "rate",
	Usage: "get the exchange rate between two currencies",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "base",
			Usage: "the base currency",
			Value: "BTC",
		},
		&cli.StringFlag{
			Name:     "quote",
			Usage:    "the quote currency",
			Required: true,
		},
	},
	Action: rateAction,
}

var limits = cli.Command{
	Name:  "limits",
	Usage: "get max and available amounts for a payment medium",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "rate",
			Usage:    "the exchange rate to convert limits with",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "medium",
			Usage: "the payment medium: card or bank",
			Value: "card",
		},
	},
	Action: limitsAction,
}

var currency = cli.Command{
	Name:  "currency",
	Usage: "get the currency to trade in",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "trade",
			Usage: "the id of the trade whose in-currency to return",
		},
	},
	Action: currencyAction,
}

var trades = cli.Command{
	Name:  "trades",
	Usage: "list pending and completed trades",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "refresh",
			Usage: "fetch trades from the exchange partner",
		},
	},
	Action: tradesAction,
	Subcommands: []*cli.Command{
		{
			Name:  "view",
			Usage: "open the buy view for a trade",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "id",
					Usage: "the id of the trade",
				},
				&cli.BoolFlag{
					Name:  "bitcoin-received",
					Usage: "whether bitcoins have been received",
				},
			},
			Action: buyViewAction,
		},
	},
}

var cancel = cli.Command{
	Name:      "cancel",
	Usage:     "cancel a pending trade",
	ArgsUsage: "<trade id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "confirm",
			Usage: "confirm the cancellation, otherwise it's declined",
		},
		&cli.BoolFlag{
			Name:  "quickstart",
			Usage: "cancel through the open quick start form",
		},
	},
	Action: cancelAction,
}

var txmethod = cli.Command{
	Name:      "txmethod",
	Usage:     "get whether a transaction was a buy or a sell",
	ArgsUsage: "<tx hash>",
	Action:    txMethodAction,
}

func quoteAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	body := map[string]string{
		"amount":         ctx.String("amount"),
		"currency":       ctx.String("currency"),
		"quote_currency": ctx.String("quote-currency"),
	}
	var res interface{}
	if err := client.post("/v1/quote", body, &res); err != nil {
		return err
	}
	printRespJSON(res)
	return nil
}

func rateAction(ctx *cli.Context) error {
	return printGet("/v1/rate", url.Values{
		"base":  {ctx.String("base")},
		"quote": {ctx.String("quote")},
	})
}

func limitsAction(ctx *cli.Context) error {
	return printGet("/v1/limits", url.Values{
		"rate":   {ctx.String("rate")},
		"medium": {ctx.String("medium")},
	})
}

func currencyAction(ctx *cli.Context) error {
	query := url.Values{}
	if id := ctx.String("trade"); id != "" {
		query.Set("trade_id", id)
	}
	return printGet("/v1/currency", query)
}

func tradesAction(ctx *cli.Context) error {
	return printGet("/v1/trades", url.Values{
		"refresh": {strconv.FormatBool(ctx.Bool("refresh"))},
	})
}

func buyViewAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"trade_id":         ctx.String("id"),
		"bitcoin_received": ctx.Bool("bitcoin-received"),
	}
	if err := client.post("/v1/buy-view", body, nil); err != nil {
		return err
	}
	fmt.Println("buy view opened")
	return nil
}

func cancelAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v1/trades/%s/cancel", url.PathEscape(ctx.Args().First()))
	if ctx.Bool("quickstart") {
		path = "/v1/quickstart" + path[len("/v1"):]
	}

	var res interface{}
	body := map[string]bool{"confirm": ctx.Bool("confirm")}
	if err := client.post(path, body, &res); err != nil {
		return err
	}
	printRespJSON(res)
	return nil
}

func txMethodAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	path := fmt.Sprintf("/v1/txs/%s/method", url.PathEscape(ctx.Args().First()))
	return printGet(path, nil)
}

func printGet(path string, query url.Values) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var res interface{}
	if err := client.get(path, query, &res); err != nil {
		return err
	}
	printRespJSON(res)
	return nil
}
