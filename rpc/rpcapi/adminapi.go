package rpcapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/admin"
	"github.com/anyswap/CrossSwap-Router/mongodb"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

const (
	reloadGatewaysCmd    = "reloadgateways"
	recordSponsorshipCmd = "recordsponsorship"

	successReuslt = "Success"
)

// AdminCall admin call
func (s *RouterSwapAPI) AdminCall(r *http.Request, rawCall, result *string) (err error) {
	services := bridge.GetServices()
	if services == nil || !services.Config.Server.HasAdmin() {
		return fmt.Errorf("no admin is configed")
	}
	call, err := admin.DecodeCall(*rawCall)
	if err != nil {
		return err
	}
	sender, args, err := admin.VerifyCall(call, time.Now())
	if err != nil {
		return err
	}
	if !services.Config.Server.IsAdmin(sender.String()) {
		return fmt.Errorf("sender %v is not admin", sender.String())
	}
	return doRouterAdminCall(r.Context(), args, result)
}

func doRouterAdminCall(ctx context.Context, args *admin.CallArgs, result *string) error {
	switch args.Method {
	case reloadGatewaysCmd:
		return reloadGateways(args, result)
	case recordSponsorshipCmd:
		return recordSponsorship(ctx, args, result)
	default:
		return fmt.Errorf("unknown admin method '%v'", args.Method)
	}
}

// params: [gatewayFile]
func reloadGateways(args *admin.CallArgs, result *string) error {
	if len(args.Params) > 1 {
		return fmt.Errorf("wrong number of params, have %v want at most 1", len(args.Params))
	}
	gatewayFile := ""
	if len(args.Params) == 1 {
		gatewayFile = args.Params[0]
	}
	if err := bridge.ReloadGatewayConfig(gatewayFile); err != nil {
		return err
	}
	*result = successReuslt
	return nil
}

// params: user volumeUsd [accountCreated]
func recordSponsorship(ctx context.Context, args *admin.CallArgs, result *string) error {
	if len(args.Params) < 2 || len(args.Params) > 3 {
		return fmt.Errorf("wrong number of params, have %v want 2 or 3", len(args.Params))
	}
	user, ok := eth.ParseAddress(args.Params[0])
	if !ok {
		return fmt.Errorf("%w: wrong user address '%v'", tokens.ErrInvalidParam, args.Params[0])
	}
	volumeUsd, err := decimal.NewFromString(args.Params[1])
	if err != nil || volumeUsd.IsNegative() {
		return fmt.Errorf("%w: wrong volume '%v'", tokens.ErrInvalidParam, args.Params[1])
	}
	accountCreated := false
	if len(args.Params) == 3 {
		accountCreated, err = strconv.ParseBool(args.Params[2])
		if err != nil {
			return fmt.Errorf("%w: wrong account created flag '%v'", tokens.ErrInvalidParam, args.Params[2])
		}
	}
	err = mongodb.RecordSponsoredDeposit(ctx, user, time.Now(), volumeUsd, accountCreated)
	if err != nil {
		return err
	}
	*result = successReuslt
	return nil
}
