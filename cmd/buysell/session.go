package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var login = cli.Command{
	Name:  "login",
	Usage: "log the wallet in and initialize the exchange session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "path of a json file with the wallet login info",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "the receive address of the default account",
		},
		&cli.StringFlag{
			Name:  "currency",
			Usage: "the wallet currency",
			Value: "USD",
		},
		&cli.StringFlag{
			Name:  "coinify-token",
			Usage: "the Coinify offline token of the wallet",
		},
		&cli.StringFlag{
			Name:  "sfox-token",
			Usage: "the SFOX account token of the wallet",
		},
	},
	Action: loginAction,
}

var logout = cli.Command{
	Name:   "logout",
	Usage:  "log the wallet out and drop the exchange session",
	Action: logoutAction,
}

var status = cli.Command{
	Name:   "status",
	Usage:  "get the status of the exchange session",
	Action: statusAction,
}

var options = cli.Command{
	Name:   "options",
	Usage:  "get the wallet options relevant to buy-sell",
	Action: optionsAction,
}

// loginInfo mirrors the login body accepted by the daemon.
type loginInfo struct {
	Accounts            []loginAccount    `json:"accounts"`
	DefaultAccountIndex int               `json:"default_account_index"`
	Currency            string            `json:"currency"`
	ExternalData        bool              `json:"external_data"`
	PartnerTokens       map[string]string `json:"partner_tokens,omitempty"`
}

type loginAccount struct {
	Index          int    `json:"index"`
	Label          string `json:"label"`
	ReceiveAddress string `json:"receive_address"`
}

func loginInfoFromFlags(ctx *cli.Context) (*loginInfo, error) {
	if path := ctx.String("file"); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		info := &loginInfo{}
		if err := json.Unmarshal(buf, info); err != nil {
			return nil, fmt.Errorf("invalid login file: %w", err)
		}
		return info, nil
	}

	tokens := map[string]string{}
	if token := ctx.String("coinify-token"); token != "" {
		tokens["coinify"] = token
	}
	if token := ctx.String("sfox-token"); token != "" {
		tokens["sfox"] = token
	}

	return &loginInfo{
		Accounts: []loginAccount{{
			Index:          0,
			Label:          "default",
			ReceiveAddress: ctx.String("address"),
		}},
		Currency:      ctx.String("currency"),
		ExternalData:  len(tokens) > 0,
		PartnerTokens: tokens,
	}, nil
}

func loginAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	info, err := loginInfoFromFlags(ctx)
	if err != nil {
		return err
	}

	var res interface{}
	if err := client.post("/v1/login", info, &res); err != nil {
		return err
	}
	printRespJSON(res)
	return nil
}

func logoutAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var res interface{}
	if err := client.post("/v1/logout", nil, &res); err != nil {
		return err
	}
	printRespJSON(res)
	return nil
}

func statusAction(ctx *cli.Context) error {
	return printGet("/v1/status", nil)
}

func optionsAction(ctx *cli.Context) error {
	return printGet("/v1/options", nil)
}
