package swapapi

import (
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// ServerInfo serverinfo
type ServerInfo struct {
	Identifier string
	Version    string
	Strategies []string
	SwapAPIs   []string
}

// QuoteArgs cross swap quote request
type QuoteArgs struct {
	Amount             string               `json:"amount" validate:"required,number"`
	TradeType          string               `json:"tradeType" validate:"omitempty,oneof=exactInput exactOutput minOutput"`
	InputToken         string               `json:"inputToken" validate:"required,eth_addr"`
	InputDecimals      uint8                `json:"inputDecimals,omitempty"`
	OriginChainID      uint64               `json:"originChainId" validate:"required"`
	OutputToken        string               `json:"outputToken" validate:"required,eth_addr"`
	OutputDecimals     uint8                `json:"outputDecimals,omitempty"`
	DestinationChainID uint64               `json:"destinationChainId" validate:"required,nefield=OriginChainID"`
	Depositor          string               `json:"depositor" validate:"required,eth_addr"`
	Recipient          string               `json:"recipient" validate:"omitempty,eth_addr"`
	RefundAddress      string               `json:"refundAddress" validate:"omitempty,eth_addr"`
	RefundOnOrigin     bool                 `json:"refundOnOrigin"`
	SlippageTolerance  string               `json:"slippageTolerance"`
	AppFee             string               `json:"appFee" validate:"omitempty,numeric"`
	AppFeeRecipient    string               `json:"appFeeRecipient" validate:"omitempty,eth_addr"`
	IncludeSources     []string             `json:"includeSources,omitempty"`
	ExcludeSources     []string             `json:"excludeSources,omitempty"`
	Actions            []*tokens.Action     `json:"actions,omitempty"`
	IntegratorID       string               `json:"integratorId,omitempty" validate:"omitempty,hexadecimal"`
	BuildTx            bool                 `json:"buildTx"`
	Gasless            bool                 `json:"gasless"`
	Permit             *tokens.PermitParams `json:"permit,omitempty"`
}

// QuoteResult cross swap quote response
type QuoteResult struct {
	ID        string                  `json:"id"`
	Timestamp int64                   `json:"timestamp"`
	Quotes    *tokens.CrossSwapQuotes `json:"quotes"`
	SwapTx    *tokens.OriginTx        `json:"swapTx,omitempty"`
	GaslessTx *tokens.GaslessTx       `json:"gaslessTx,omitempty"`
}

// ResolveResult resolved bridge strategy of a request
type ResolveResult struct {
	Strategy string `json:"strategy"`
	Rule     string `json:"rule"`
	Reason   string `json:"reason"`
}

// ErrorData data of api error
type ErrorData struct {
	Kind      tokens.ErrorKind `json:"kind"`
	Required  string           `json:"required,omitempty"`
	Actual    string           `json:"actual,omitempty"`
	Shortfall string           `json:"shortfall,omitempty"`
}
