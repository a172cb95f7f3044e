package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	fieldFlag = cli.StringFlag{
		Name:  "field",
		Usage: "the edited amount: fiat or btc",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "the new amount, empty to clear it",
	}
)

var checkout = cli.Command{
	Name:   "checkout",
	Usage:  "get the state of the SFOX checkout",
	Action: checkoutStateAction,
	Subcommands: []*cli.Command{
		{
			Name:   "open",
			Usage:  "open the checkout with the user's bank account",
			Action: checkoutOpenAction,
		},
		{
			Name:  "input",
			Usage: "update an amount or the base currency",
			Flags: []cli.Flag{
				&fieldFlag,
				&amountFlag,
				&cli.StringFlag{
					Name:  "base",
					Usage: "the currency amounts are entered in: USD or BTC",
				},
			},
			Action: checkoutInputAction,
		},
		{
			Name:  "refresh",
			Usage: "refresh the quote if the amount is valid",
			Flags: []cli.Flag{
				&fieldFlag,
			},
			Action: checkoutRefreshAction,
		},
		{
			Name:   "buy",
			Usage:  "submit a buy trade for the current quote",
			Action: checkoutBuyAction,
		},
		{
			Name:   "close",
			Usage:  "close the checkout",
			Action: checkoutCloseAction,
		},
	},
}

func checkoutStateAction(ctx *cli.Context) error {
	return printGet("/v1/checkout", nil)
}

func checkoutOpenAction(ctx *cli.Context) error {
	return printPost("/v1/checkout", nil)
}

func checkoutInputAction(ctx *cli.Context) error {
	return printPost("/v1/checkout/input", map[string]string{
		"field":         ctx.String("field"),
		"amount":        ctx.String("amount"),
		"base_currency": ctx.String("base"),
	})
}

func checkoutRefreshAction(ctx *cli.Context) error {
	return printPost("/v1/checkout/refresh", map[string]string{
		"field": ctx.String("field"),
	})
}

func checkoutBuyAction(ctx *cli.Context) error {
	return printPost("/v1/checkout/buy", nil)
}

func checkoutCloseAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if err := client.delete("/v1/checkout"); err != nil {
		return err
	}
	fmt.Println("checkout closed")
	return nil
}
