package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/CrossSwap-Router/cmd/utils"
	"github.com/anyswap/CrossSwap-Router/internal/swapapi"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
)

var (
	configCommand = &cli.Command{
		Name:  "config",
		Usage: "config cross swap router",
		Flags: append([]cli.Flag{utils.ConfigFileFlag, utils.EnvFileFlag}, utils.CommonLogFlags...),
		Description: `
check config and query the strategies it routes to
`,
		Subcommands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "check config file",
				Action: checkConfig,
				Flags:  []cli.Flag{utils.RunServerFlag},
			},
			{
				Name:      "getChainConfig",
				Usage:     "get chain config",
				Action:    getChainConfig,
				ArgsUsage: "<chainID>",
			},
			{
				Name:      "getRoutes",
				Usage:     "get bridge routes between chains",
				Action:    getRoutes,
				ArgsUsage: "<originChainID> <destChainID>",
			},
			{
				Name:   "strategies",
				Usage:  "list bridge strategies",
				Action: listStrategies,
			},
			{
				Name:   "resolve",
				Usage:  "resolve bridge strategy of a cross swap",
				Action: resolveStrategy,
				Flags:  quoteFlags,
			},
			{
				Name:   "quote",
				Usage:  "get cross swap quotes",
				Action: getQuote,
				Flags:  append(quoteFlags, buildTxFlag),
			},
		},
	}

	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "amount in smallest unit",
		Required: true,
	}
	tradeTypeFlag = &cli.StringFlag{
		Name:  "tradetype",
		Usage: "exactInput, exactOutput or minOutput",
		Value: "exactInput",
	}
	inputTokenFlag = &cli.StringFlag{
		Name:     "input",
		Usage:    "input token address",
		Required: true,
	}
	originChainFlag = &cli.Uint64Flag{
		Name:     "origin",
		Usage:    "origin chain id",
		Required: true,
	}
	outputTokenFlag = &cli.StringFlag{
		Name:     "output",
		Usage:    "output token address",
		Required: true,
	}
	destChainFlag = &cli.Uint64Flag{
		Name:     "dest",
		Usage:    "destination chain id",
		Required: true,
	}
	depositorFlag = &cli.StringFlag{
		Name:     "depositor",
		Usage:    "depositor address",
		Required: true,
	}
	buildTxFlag = &cli.BoolFlag{
		Name:  "buildtx",
		Usage: "build origin swap tx",
	}

	quoteFlags = []cli.Flag{
		amountFlag,
		tradeTypeFlag,
		inputTokenFlag,
		originChainFlag,
		outputTokenFlag,
		destChainFlag,
		depositorFlag,
	}
)

func loadConfig(ctx *cli.Context, isServer bool) (*params.RouterConfig, error) {
	utils.SetLogger(ctx)
	if err := utils.LoadEnvFile(ctx); err != nil {
		return nil, err
	}
	return params.LoadRouterConfig(utils.GetConfigFilePath(ctx), isServer), nil
}

func initServices(ctx *cli.Context) error {
	config, err := loadConfig(ctx, false)
	if err != nil {
		return err
	}
	bridge.InitRouterServices(config, false)
	return nil
}

func printJSON(title string, v interface{}) error {
	jsdata, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(title, string(jsdata))
	return nil
}

func checkConfig(ctx *cli.Context) error {
	config, err := loadConfig(ctx, ctx.Bool(utils.RunServerFlag.Name))
	if err != nil {
		return err
	}
	fmt.Printf("config of '%v' is valid\n", config.Identifier)
	return nil
}

func getChainConfig(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("miss required position argument")
	}
	if err := initServices(ctx); err != nil {
		return err
	}
	chainCfg, err := swapapi.GetChainConfig(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	return printJSON("chain config is", chainCfg)
}

func getRoutes(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return fmt.Errorf("miss required position argument")
	}
	if err := initServices(ctx); err != nil {
		return err
	}
	routes, err := swapapi.GetRoutes(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	return printJSON("routes are", routes)
}

func listStrategies(ctx *cli.Context) error {
	if err := initServices(ctx); err != nil {
		return err
	}
	s := bridge.GetServices()
	fmt.Println("default strategy is", s.Registry.DefaultStrategy().Name())
	return printJSON("strategies are", s.Registry.StrategyNames())
}

func getQuoteArgs(ctx *cli.Context) *swapapi.QuoteArgs {
	return &swapapi.QuoteArgs{
		Amount:             ctx.String(amountFlag.Name),
		TradeType:          ctx.String(tradeTypeFlag.Name),
		InputToken:         ctx.String(inputTokenFlag.Name),
		OriginChainID:      ctx.Uint64(originChainFlag.Name),
		OutputToken:        ctx.String(outputTokenFlag.Name),
		DestinationChainID: ctx.Uint64(destChainFlag.Name),
		Depositor:          ctx.String(depositorFlag.Name),
		BuildTx:            ctx.Bool(buildTxFlag.Name),
	}
}

func resolveStrategy(ctx *cli.Context) error {
	if err := initServices(ctx); err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	res, err := swapapi.ResolveStrategy(cctx, getQuoteArgs(ctx))
	if err != nil {
		return err
	}
	return printJSON("resolved strategy is", res)
}

func getQuote(ctx *cli.Context) error {
	if err := initServices(ctx); err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	start := time.Now()
	res, err := swapapi.GetQuote(cctx, getQuoteArgs(ctx))
	if err != nil {
		return err
	}
	fmt.Println("quote cost", ethcommon.PrettyDuration(time.Since(start)))
	return printJSON("quote is", res)
}
