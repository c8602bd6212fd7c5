package swapapi

import (
	"errors"
	"fmt"
	"net/http"

	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// rpc error codes of error kinds
const (
	CodeInvalidParam        rpcjson.ErrorCode = rpcjson.E_BAD_PARAMS
	CodeAmountTooLow        rpcjson.ErrorCode = -32001
	CodeNoQuoteFound        rpcjson.ErrorCode = -32002
	CodeUpstreamUnavailable rpcjson.ErrorCode = -32003
	CodeUpstreamTransient   rpcjson.ErrorCode = -32004
	CodePreconditionFailed  rpcjson.ErrorCode = -32005
	CodeInternal            rpcjson.ErrorCode = rpcjson.E_SERVER
)

func newRPCError(ec rpcjson.ErrorCode, message string, data interface{}) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
		Data:    data,
	}
}

// HTTPStatus http status of error
func HTTPStatus(err error) int {
	switch tokens.KindOf(err) {
	case tokens.KindInvalidParam, tokens.KindAmountTooLow:
		return http.StatusBadRequest
	case tokens.KindNoQuoteFound:
		return http.StatusNotFound
	case tokens.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case tokens.KindUpstreamTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func rpcCode(kind tokens.ErrorKind) rpcjson.ErrorCode {
	switch kind {
	case tokens.KindInvalidParam:
		return CodeInvalidParam
	case tokens.KindAmountTooLow:
		return CodeAmountTooLow
	case tokens.KindNoQuoteFound:
		return CodeNoQuoteFound
	case tokens.KindUpstreamUnavailable:
		return CodeUpstreamUnavailable
	case tokens.KindUpstreamTransient:
		return CodeUpstreamTransient
	case tokens.KindPreconditionFailed:
		return CodePreconditionFailed
	default:
		return CodeInternal
	}
}

// NewErrorData error data carrying kind and amount shortfall
func NewErrorData(err error) *ErrorData {
	data := &ErrorData{Kind: tokens.KindOf(err)}
	var tooLow *tokens.AmountTooLowError
	if errors.As(err, &tooLow) {
		if tooLow.Required != nil {
			data.Required = tooLow.Required.String()
		}
		if tooLow.Actual != nil {
			data.Actual = tooLow.Actual.String()
		}
		if shortfall := tooLow.Shortfall(); shortfall != nil {
			data.Shortfall = shortfall.String()
		}
	}
	return data
}

// ToRPCError convert error to json rpc error
func ToRPCError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *rpcjson.Error
	if errors.As(err, &rpcErr) {
		return err
	}
	data := NewErrorData(err)
	message := err.Error()
	if data.Kind == tokens.KindInternal {
		message = "rpcError: " + message
	}
	return newRPCError(rpcCode(data.Kind), message, data)
}

// NewInvalidParamError new invalid param error
func NewInvalidParamError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %v", tokens.ErrInvalidParam, fmt.Sprintf(format, args...))
}
