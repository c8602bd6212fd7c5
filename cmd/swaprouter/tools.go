package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/CrossSwap-Router/cmd/utils"
)

var (
	toolsCommand = &cli.Command{
		Name:  "tools",
		Usage: "useful tools",
		Flags: utils.CommonLogFlags,
		Description: `
useful tools
`,
		Subcommands: []*cli.Command{
			{
				Name:      "keccak256",
				Usage:     "calc keccak256 hash",
				Action:    keccak256Hash,
				ArgsUsage: "[message]",
				Flags:     []cli.Flag{messageFlag, isHexFlag},
			},
			{
				Name:      "selector",
				Usage:     "calc function selector of signature",
				Action:    funcSelector,
				ArgsUsage: "[signature]",
				Flags:     []cli.Flag{messageFlag},
			},
			{
				Name:      "checksum",
				Usage:     "convert address to checksum address",
				Action:    checksumAddress,
				ArgsUsage: "[address]",
				Flags:     []cli.Flag{messageFlag},
			},
		},
	}

	messageFlag = &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   "message text",
	}

	isHexFlag = &cli.BoolFlag{
		Name:  "hex",
		Usage: "from hex string",
	}
)

func getMessage(ctx *cli.Context) (string, error) {
	if ctx.NArg() > 1 {
		return "", fmt.Errorf("has more than one position argument: %v", ctx.Args())
	}
	var message string
	if ctx.NArg() == 1 {
		message = ctx.Args().Get(0) // positional args first
	} else {
		message = ctx.String(messageFlag.Name)
	}
	fmt.Printf("the message is '%v'\n", message)
	return message, nil
}

func keccak256Hash(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	message, err := getMessage(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(isHexFlag.Name) {
		calcHash := crypto.Keccak256Hash(common.FromHex(message))
		fmt.Printf("calc keccak256 hash from hex is '%v'\n", calcHash.Hex())
	} else {
		calcHash := crypto.Keccak256Hash([]byte(message))
		fmt.Printf("calc keccak256 hash from text is '%v'\n", calcHash.Hex())
	}
	return nil
}

func funcSelector(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	signature, err := getMessage(ctx)
	if err != nil {
		return err
	}
	signature = strings.ReplaceAll(signature, " ", "")
	selector := crypto.Keccak256([]byte(signature))[:4]
	fmt.Printf("function selector of '%v' is '%v'\n", signature, hexutil.Encode(selector))
	return nil
}

func checksumAddress(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	address, err := getMessage(ctx)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("wrong address '%v'", address)
	}
	fmt.Printf("checksum address is '%v'\n", common.HexToAddress(address).Hex())
	return nil
}
