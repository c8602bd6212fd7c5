// Package rpcapi provides the JSON RPC service of the router server.
package rpcapi

import (
	"net/http"

	"github.com/anyswap/CrossSwap-Router/internal/swapapi"
	"github.com/anyswap/CrossSwap-Router/params"
)

// RouterSwapAPI rpc api handler
type RouterSwapAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// ChainIDArgs chain id args
type ChainIDArgs struct {
	ChainID string `json:"chainid"`
}

// RoutesArgs routes args
type RoutesArgs struct {
	OriginChainID string `json:"originChainId"`
	DestChainID   string `json:"destinationChainId"`
}

// GetVersionInfo api
func (s *RouterSwapAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	version := params.VersionWithMeta
	*result = version
	return nil
}

// GetServerInfo api
func (s *RouterSwapAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *swapapi.ServerInfo) error {
	serverInfo := swapapi.GetServerInfo()
	*result = *serverInfo
	return nil
}

// GetQuote api
func (s *RouterSwapAPI) GetQuote(r *http.Request, args *swapapi.QuoteArgs, result *swapapi.QuoteResult) error {
	res, err := swapapi.GetQuote(r.Context(), args)
	if err == nil && res != nil {
		*result = *res
	}
	return swapapi.ToRPCError(err)
}

// ResolveStrategy api
func (s *RouterSwapAPI) ResolveStrategy(r *http.Request, args *swapapi.QuoteArgs, result *swapapi.ResolveResult) error {
	res, err := swapapi.ResolveStrategy(r.Context(), args)
	if err == nil && res != nil {
		*result = *res
	}
	return swapapi.ToRPCError(err)
}

// GetChainConfig api
func (s *RouterSwapAPI) GetChainConfig(r *http.Request, args *ChainIDArgs, result *params.ChainConfig) error {
	res, err := swapapi.GetChainConfig(args.ChainID)
	if err == nil && res != nil {
		*result = *res
	}
	return swapapi.ToRPCError(err)
}

// GetRoutes api
func (s *RouterSwapAPI) GetRoutes(r *http.Request, args *RoutesArgs, result *[]*params.RouteConfig) error {
	res, err := swapapi.GetRoutes(args.OriginChainID, args.DestChainID)
	if err == nil {
		*result = res
	}
	return swapapi.ToRPCError(err)
}
