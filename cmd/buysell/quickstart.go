package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var quickstart = cli.Command{
	Name:   "quickstart",
	Usage:  "get the state of the Coinify quick start form",
	Action: quickStartStateAction,
	Subcommands: []*cli.Command{
		{
			Name:  "open",
			Usage: "open the quick start form",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "currency",
					Usage: "the fiat currency, defaults to the trading one",
				},
			},
			Action: quickStartOpenAction,
		},
		{
			Name:  "input",
			Usage: "update an amount or the fiat currency",
			Flags: []cli.Flag{
				&fieldFlag,
				&amountFlag,
				&cli.StringFlag{
					Name:  "currency",
					Usage: "the new fiat currency",
				},
			},
			Action: quickStartInputAction,
		},
		{
			Name:   "quote",
			Usage:  "quote the amount last edited",
			Action: quickStartQuoteAction,
		},
		{
			Name:   "rate",
			Usage:  "refresh the exchange rate",
			Action: quickStartRateAction,
		},
		{
			Name:  "modal",
			Usage: "pause or resume the exchange rate refresh",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "open",
					Usage: "whether a modal is open",
				},
			},
			Action: quickStartModalAction,
		},
		{
			Name:   "close",
			Usage:  "close the quick start form",
			Action: quickStartCloseAction,
		},
	},
}

func quickStartStateAction(ctx *cli.Context) error {
	return printGet("/v1/quickstart", nil)
}

func quickStartOpenAction(ctx *cli.Context) error {
	return printPost("/v1/quickstart", map[string]string{
		"currency": ctx.String("currency"),
	})
}

func quickStartInputAction(ctx *cli.Context) error {
	return printPost("/v1/quickstart/input", map[string]string{
		"field":    ctx.String("field"),
		"amount":   ctx.String("amount"),
		"currency": ctx.String("currency"),
	})
}

func quickStartQuoteAction(ctx *cli.Context) error {
	return printPost("/v1/quickstart/quote", nil)
}

func quickStartRateAction(ctx *cli.Context) error {
	return printPost("/v1/quickstart/rate", nil)
}

func quickStartModalAction(ctx *cli.Context) error {
	return printPost("/v1/quickstart/modal", map[string]bool{
		"open": ctx.Bool("open"),
	})
}

func quickStartCloseAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if err := client.delete("/v1/quickstart"); err != nil {
		return err
	}
	fmt.Println("quick start closed")
	return nil
}
