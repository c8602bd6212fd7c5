package eth

import (
	"context"
	"errors"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

var (
	_ tokens.ContractCaller = &Caller{}

	errEmptyURLs = errors.New("empty URLs")

	defaultCallTimeout = 10 * time.Second
)

// Caller eth_call with gateway fallback
type Caller struct {
	mu       sync.RWMutex
	gateways map[uint64][]string
	clients  map[string]*ethclient.Client

	timeout time.Duration
}

// NewCaller new caller
func NewCaller(gateways map[uint64][]string) *Caller {
	c := &Caller{
		gateways: make(map[uint64][]string, len(gateways)),
		clients:  make(map[string]*ethclient.Client),
		timeout:  defaultCallTimeout,
	}
	for chainID, urls := range gateways {
		c.gateways[chainID] = append([]string(nil), urls...)
	}
	return c
}

// SetTimeout set timeout of one call
func (c *Caller) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetGateways replace gateways of chain
func (c *Caller) SetGateways(chainID uint64, urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gateways[chainID] = append([]string(nil), urls...)
	log.Info("set gateways success", "chainID", chainID, "gateways", len(urls))
}

// GetGateways get gateways of chain
func (c *Caller) GetGateways(chainID uint64) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gateways[chainID]
}

// Close close dialed clients
func (c *Caller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, client := range c.clients {
		client.Close()
		delete(c.clients, url)
	}
}

// CallContract call eth_call on each gateway until success
func (c *Caller) CallContract(ctx context.Context, chainID uint64, contract common.Address, data []byte) (result []byte, err error) {
	urls := c.GetGateways(chainID)
	if len(urls) == 0 {
		return nil, tokens.WrapRPCQueryError(errEmptyURLs, "eth_call", chainID, contract.Hex())
	}
	msg := ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}
	for _, url := range urls {
		result, err = c.callContract(ctx, url, msg)
		if err == nil {
			return result, nil
		}
		log.Debug("call contract failed", "chainID", chainID, "contract", contract.Hex(), "url", url, "err", err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, tokens.WrapRPCQueryError(err, "eth_call", chainID, contract.Hex())
}

func (c *Caller) callContract(ctx context.Context, url string, msg ethereum.CallMsg) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	client, err := c.dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return client.CallContract(ctx, msg, nil)
}

func (c *Caller) dial(ctx context.Context, url string) (*ethclient.Client, error) {
	c.mu.RLock()
	client, exist := c.clients[url]
	c.mu.RUnlock()
	if exist {
		return client, nil
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, exist := c.clients[url]; exist {
		client.Close()
		return old, nil
	}
	c.clients[url] = client
	return client, nil
}

// ChainIDs chains having gateways
func (c *Caller) ChainIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chainIDs := make([]uint64, 0, len(c.gateways))
	for chainID := range c.gateways {
		chainIDs = append(chainIDs, chainID)
	}
	return chainIDs
}

// GetLatestBlockNumberOf latest block number of gateway
func (c *Caller) GetLatestBlockNumberOf(ctx context.Context, url string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	client, err := c.dial(ctx, url)
	if err != nil {
		return 0, err
	}
	return client.BlockNumber(ctx)
}
