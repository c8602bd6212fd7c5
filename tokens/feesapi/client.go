// Package feesapi is the http client of the bridge suggested fees and limits api.
package feesapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/metrics"
	"github.com/anyswap/CrossSwap-Router/rpc/client"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

const providerName = "bridge-fees-api"

var _ tokens.BridgeQuoteProvider = &Client{}

// Client bridge fees api client
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient new client
func NewClient(baseURL string, timeoutSeconds int) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = client.GetDefaultTimeout()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

type feeResp struct {
	Pct   cmn.BigIntJSON `json:"pct"`
	Total cmn.BigIntJSON `json:"total"`
}

func (f *feeResp) toRawFee() tokens.RawFee {
	return tokens.RawFee{Pct: f.Pct.Value(), Total: f.Total.Value()}
}

type limitsResp struct {
	MinDeposit           cmn.BigIntJSON `json:"minDeposit"`
	MaxDeposit           cmn.BigIntJSON `json:"maxDeposit"`
	MaxDepositInstant    cmn.BigIntJSON `json:"maxDepositInstant"`
	MaxDepositShortDelay cmn.BigIntJSON `json:"maxDepositShortDelay"`
	LiquidReserves       cmn.BigIntJSON `json:"liquidReserves"`
	UtilizedReserves     cmn.BigIntJSON `json:"utilizedReserves"`
}

func (l *limitsResp) toLimits() *tokens.Limits {
	return &tokens.Limits{
		MinDeposit:           l.MinDeposit.Value(),
		MaxDeposit:           l.MaxDeposit.Value(),
		MaxDepositInstant:    l.MaxDepositInstant.Value(),
		MaxDepositShortDelay: l.MaxDepositShortDelay.Value(),
		LiquidReserves:       l.LiquidReserves.Value(),
		UtilizedReserves:     l.UtilizedReserves.Value(),
	}
}

type suggestedFeesResp struct {
	TotalRelayFee       feeResp        `json:"totalRelayFee"`
	RelayerCapitalFee   feeResp        `json:"relayerCapitalFee"`
	RelayerGasFee       feeResp        `json:"relayerGasFee"`
	LpFee               feeResp        `json:"lpFee"`
	OutputAmount        cmn.BigIntJSON `json:"outputAmount"`
	Timestamp           cmn.Uint64JSON `json:"timestamp"`
	FillDeadline        cmn.Uint64JSON `json:"fillDeadline"`
	ExclusiveRelayer    string         `json:"exclusiveRelayer"`
	ExclusivityDeadline cmn.Uint64JSON `json:"exclusivityDeadline"`
	ExpectedFillTimeSec cmn.Uint64JSON `json:"expectedFillTimeSec"`
	IsAmountTooLow      bool           `json:"isAmountTooLow"`
	SpokePoolAddress    string         `json:"spokePoolAddress"`
	Limits              *limitsResp    `json:"limits"`
}

// SuggestedFees get suggested fees
func (c *Client) SuggestedFees(ctx context.Context, req *tokens.SuggestedFeesRequest) (*tokens.SuggestedFees, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	query := routeQuery(req.InputToken, req.OutputToken)
	query.Set("amount", req.Amount.String())
	if req.Recipient != (common.Address{}) {
		query.Set("recipient", req.Recipient.Hex())
	}
	if req.Depositor != (common.Address{}) {
		query.Set("depositor", req.Depositor.Hex())
	}
	if len(req.Message) > 0 {
		query.Set("message", hexutil.Encode(req.Message))
	}

	var result suggestedFeesResp
	if err := c.get(ctx, "suggested-fees", query, &result); err != nil {
		return nil, err
	}
	fees := &tokens.SuggestedFees{
		TotalRelayFee:        result.TotalRelayFee.toRawFee(),
		RelayerCapitalFee:    result.RelayerCapitalFee.toRawFee(),
		RelayerGasFee:        result.RelayerGasFee.toRawFee(),
		LpFee:                result.LpFee.toRawFee(),
		QuoteTimestamp:       uint32(result.Timestamp),
		FillDeadline:         uint32(result.FillDeadline),
		ExclusiveRelayer:     common.HexToAddress(result.ExclusiveRelayer),
		ExclusivityDeadline:  uint32(result.ExclusivityDeadline),
		EstimatedFillTimeSec: int(result.ExpectedFillTimeSec),
		IsAmountTooLow:       result.IsAmountTooLow,
		SpokePool:            common.HexToAddress(result.SpokePoolAddress),
	}
	if result.OutputAmount.Int != nil {
		fees.OutputAmount = result.OutputAmount.Value()
	}
	if result.Limits != nil {
		fees.Limits = result.Limits.toLimits()
	}
	return fees, nil
}

// Limits get route limits
func (c *Client) Limits(ctx context.Context, req *tokens.LimitsRequest) (*tokens.Limits, error) {
	var result limitsResp
	if err := c.get(ctx, "limits", routeQuery(req.InputToken, req.OutputToken), &result); err != nil {
		return nil, err
	}
	return result.toLimits(), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := client.JSONGet(ctx, result, c.baseURL+"/"+path, query)
	if err == nil {
		return nil
	}
	err = classifyError(err)
	metrics.IncProviderError(providerName, string(tokens.KindOf(err)))
	log.Warn("call bridge fees api failed", "path", path, "query", query.Encode(), "err", err)
	return err
}

func routeQuery(inputToken, outputToken tokens.Token) url.Values {
	query := url.Values{}
	query.Set("inputToken", inputToken.Address.Hex())
	query.Set("outputToken", outputToken.Address.Hex())
	query.Set("originChainId", strconv.FormatUint(inputToken.ChainID, 10))
	query.Set("destinationChainId", strconv.FormatUint(outputToken.ChainID, 10))
	return query
}

func classifyError(err error) error {
	var statusErr *client.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.IsServerError():
			return fmt.Errorf("%w: %v", tokens.ErrUpstreamUnavailable, err)
		case strings.Contains(statusErr.Body, "AMOUNT_TOO_LOW"):
			return fmt.Errorf("%w: %v", tokens.ErrAmountTooLow, err)
		case strings.Contains(statusErr.Body, "ROUTE_NOT_ENABLED"):
			return fmt.Errorf("%w: %v", tokens.ErrRouteNotSupported, err)
		default:
			return fmt.Errorf("%w: %v", tokens.ErrInvalidParam, err)
		}
	}
	return fmt.Errorf("%w: %v", tokens.ErrUpstreamTransient, err)
}
