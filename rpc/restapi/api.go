// Package restapi provides the RESTful handlers of the router server.
package restapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/anyswap/CrossSwap-Router/internal/swapapi"
	"github.com/anyswap/CrossSwap-Router/params"
)

// maxRequestBodySize limits posted quote requests
const maxRequestBodySize = 1 << 20

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	// Note: must set header before write header
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(swapapi.HTTPStatus(err))
		jsonData, _ := json.Marshal(&errorResponse{
			Error: err.Error(),
			Data:  swapapi.NewErrorData(err),
		})
		_, _ = w.Write(jsonData)
		return
	}
	w.WriteHeader(http.StatusOK)
	jsonData, _ := json.Marshal(resp)
	_, _ = w.Write(jsonData)
}

type errorResponse struct {
	Error string             `json:"error"`
	Data  *swapapi.ErrorData `json:"data"`
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	version := params.VersionWithMeta
	writeResponse(w, version, nil)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	serverInfo := swapapi.GetServerInfo()
	writeResponse(w, serverInfo, nil)
}

// GetChainConfigHandler handler
func GetChainConfigHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chainID := vars["chainid"]
	res, err := swapapi.GetChainConfig(chainID)
	writeResponse(w, res, err)
}

// GetRoutesHandler handler
func GetRoutesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	originChainID := vars["originchainid"]
	destChainID := vars["destchainid"]
	res, err := swapapi.GetRoutes(originChainID, destChainID)
	writeResponse(w, res, err)
}

func decodeQuoteArgs(w http.ResponseWriter, r *http.Request) (*swapapi.QuoteArgs, error) {
	args := &swapapi.QuoteArgs{}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := decoder.Decode(args); err != nil {
		return nil, swapapi.NewInvalidParamError("wrong request body: %v", err)
	}
	return args, nil
}

// GetQuoteHandler handler
func GetQuoteHandler(w http.ResponseWriter, r *http.Request) {
	args, err := decodeQuoteArgs(w, r)
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := swapapi.GetQuote(r.Context(), args)
	writeResponse(w, res, err)
}

// ResolveStrategyHandler handler
func ResolveStrategyHandler(w http.ResponseWriter, r *http.Request) {
	args, err := decodeQuoteArgs(w, r)
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := swapapi.ResolveStrategy(r.Context(), args)
	writeResponse(w, res, err)
}
