package main

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/CrossSwap-Router/admin"
	"github.com/anyswap/CrossSwap-Router/cmd/utils"
	"github.com/anyswap/CrossSwap-Router/log"
)

var (
	adminCommand = &cli.Command{
		Name:  "admin",
		Usage: "admin cross swap router",
		Flags: append(admin.CommonFlags, utils.CommonLogFlags...),
		Description: `
admin cross swap router
`,
		Subcommands: []*cli.Command{
			{
				Name:   "reloadgateways",
				Usage:  "reload gateways from gateway config file",
				Action: reloadgateways,
				Flags:  []cli.Flag{gatewayFileFlag},
				Description: `
reload gateways from gateway config file, use the configed file if not specified
`,
			},
			{
				Name:   "recordsponsorship",
				Usage:  "record sponsored deposit of user",
				Action: recordsponsorship,
				Flags:  []cli.Flag{userFlag, volumeUsdFlag, accountCreatedFlag},
				Description: `
record sponsored deposit volume of user into today's sponsorship usage
`,
			},
		},
	}

	gatewayFileFlag = &cli.StringFlag{
		Name:  "gatewayfile",
		Usage: "gateway config file on server",
	}

	userFlag = &cli.StringFlag{
		Name:  "user",
		Usage: "depositor address",
	}

	volumeUsdFlag = &cli.StringFlag{
		Name:  "usd",
		Usage: "sponsored volume in usd",
	}

	accountCreatedFlag = &cli.BoolFlag{
		Name:  "accountcreated",
		Usage: "sponsored deposit created a destination account",
	}
)

func doAdminCall(ctx *cli.Context, method string, params []string) error {
	adminClient, err := admin.Prepare(ctx)
	if err != nil {
		return err
	}
	log.Printf("%v: %v", method, params)
	result, err := adminClient.Call(ctx.Context, method, params)
	if err != nil {
		return err
	}
	log.Printf("result is '%v'", result)
	return nil
}

func reloadgateways(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	var params []string
	if gatewayFile := ctx.String(gatewayFileFlag.Name); gatewayFile != "" {
		params = append(params, gatewayFile)
	}
	return doAdminCall(ctx, "reloadgateways", params)
}

func recordsponsorship(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	user := ctx.String(userFlag.Name)
	if !common.IsHexAddress(user) {
		return fmt.Errorf("wrong user address '%v'", user)
	}
	volumeUsd := ctx.String(volumeUsdFlag.Name)
	if usd, errf := decimal.NewFromString(volumeUsd); errf != nil || usd.IsNegative() {
		return fmt.Errorf("wrong usd volume '%v'", volumeUsd)
	}
	accountCreated := strconv.FormatBool(ctx.Bool(accountCreatedFlag.Name))
	return doAdminCall(ctx, "recordsponsorship", []string{user, volumeUsd, accountCreated})
}
