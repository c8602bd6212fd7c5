package admin

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anyswap/CrossSwap-Router/cmd/utils"
	"github.com/anyswap/CrossSwap-Router/rpc/client"
)

const adminCallReqID = 1010

// CommonFlags flags of every admin subcommand
var CommonFlags = []cli.Flag{
	utils.SwapServerFlag,
	utils.KeystoreFileFlag,
	utils.PasswordFileFlag,
	utils.AdminTimeoutFlag,
}

// Client posts signed admin calls to `swap.AdminCall` of a router server
type Client struct {
	server  string
	timeout time.Duration
}

// NewClient new admin client
func NewClient(server string, timeout time.Duration) (*Client, error) {
	if server == "" {
		return nil, fmt.Errorf("must specify %v", utils.SwapServerFlag.Name)
	}
	if _, err := url.ParseRequestURI(server); err != nil {
		return nil, fmt.Errorf("wrong swap server '%v': %w", server, err)
	}
	if timeout <= 0 {
		timeout = utils.AdminTimeoutFlag.Value
	}
	return &Client{server: server, timeout: timeout}, nil
}

// Call sign and post admin call, returns the server result
func (c *Client) Call(ctx context.Context, method string, params []string) (string, error) {
	rawCall, err := Sign(method, params)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var result string
	err = client.RPCPostWithID(ctx, &result, adminCallReqID, c.server, "swap.AdminCall", rawCall)
	return result, err
}

// Prepare load the signing keystore and build client from flags
func Prepare(ctx *cli.Context) (*Client, error) {
	err := LoadKeyStore(ctx.String(utils.KeystoreFileFlag.Name), ctx.String(utils.PasswordFileFlag.Name))
	if err != nil {
		return nil, err
	}
	return NewClient(ctx.String(utils.SwapServerFlag.Name), ctx.Duration(utils.AdminTimeoutFlag.Name))
}
