// Command swaprouter is main program to start cross swap quote server or its sub commands.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anyswap/CrossSwap-Router/cmd/utils"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/mongodb"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
	rpcserver "github.com/anyswap/CrossSwap-Router/rpc/server"
)

var (
	clientIdentifier = "swaprouter"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the swaprouter command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = swaprouter
	app.HideVersion = true // we have a command to print the version
	app.Copyright = "Copyright 2017-2020 The CrossSwap-Router Authors"
	app.Commands = []*cli.Command{
		adminCommand,
		configCommand,
		toolsCommand,
		utils.LicenseCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.DataDirFlag,
		utils.ConfigFileFlag,
		utils.EnvFileFlag,
		utils.RunServerFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func swaprouter(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	if err := utils.LoadEnvFile(ctx); err != nil {
		return err
	}
	isServer := ctx.Bool(utils.RunServerFlag.Name)

	params.SetDataDir(utils.GetDataDir(ctx))
	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadRouterConfig(configFile, isServer)

	bridge.InitRouterServices(config, isServer)
	if !isServer {
		log.Info("quote services are ready, start with --runserver to serve api")
		return nil
	}

	bridge.StartAdjustGatewayOrderJob()
	bridge.WatchGatewayConfig(config.GatewayConfigFile)
	rpcserver.StartAPIServer(config.Server.APIServer)

	utils.TopWaitGroup.Add(1)
	go utils.WaitAndCleanup(func() {
		defer utils.TopWaitGroup.Done()
		mongodb.Disconnect()
	})

	utils.TopWaitGroup.Wait()
	return nil
}
