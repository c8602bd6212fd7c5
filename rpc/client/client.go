// Package client provides http calling of json apis.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/anyswap/CrossSwap-Router/log"
)

const (
	defaultTimeout = 30 // seconds
	maxBodySize    = 4 << 20
)

var httpClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// HTTPStatusError non 2xx response
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error impl error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// IsServerError is 5xx error
func (e *HTTPStatusError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// GetDefaultTimeout get default timeout in seconds
func GetDefaultTimeout() int {
	return defaultTimeout
}

// JSONGet get json from url with query params and decode into result
func JSONGet(ctx context.Context, result interface{}, rawURL string, query url.Values) error {
	return JSONGetWithHeader(ctx, result, rawURL, query, nil)
}

// JSONGetWithHeader get json with extra request headers
func JSONGetWithHeader(ctx context.Context, result interface{}, rawURL string, query url.Values, header http.Header) error {
	if len(query) > 0 {
		rawURL = rawURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	return doRequest(req, result)
}

// JSONPost post body as json to url and decode into result
func JSONPost(ctx context.Context, result, body interface{}, rawURL string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doRequest(req, result)
}

func doRequest(req *http.Request, result interface{}) error {
	ctx := req.Context()
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout*time.Second)
		defer cancel()
		req = req.WithContext(ctx)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		log.Debug("http request failed", "method", req.Method, "url", req.URL.Redacted(), "timespent", time.Since(start).String(), "err", err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response body failed: %w", err)
	}
	log.Trace("http request finished", "method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "timespent", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPStatusError{
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(body, result)
}

// RPCError json rpc error object
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error impl error interface
func (e *RPCError) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCPost json rpc 2.0 call
func RPCPost(ctx context.Context, result interface{}, rawURL, method string, params ...interface{}) error {
	return RPCPostWithID(ctx, result, 1, rawURL, method, params...)
}

// RPCPostWithID json rpc 2.0 call with request id
func RPCPostWithID(ctx context.Context, result interface{}, reqID int, rawURL, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	req := &rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      reqID,
	}
	var resp rpcResponse
	if err := JSONPost(ctx, &resp, req, rawURL); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}
