package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallHandler handles one contract call
type CallHandler func(contract common.Address, data []byte) ([]byte, error)

// FakeCaller contract caller dispatching on method selector
type FakeCaller struct {
	mu       sync.Mutex
	handlers map[string]CallHandler
	calls    map[string]int
}

// NewFakeCaller new fake caller
func NewFakeCaller() *FakeCaller {
	return &FakeCaller{
		handlers: make(map[string]CallHandler),
		calls:    make(map[string]int),
	}
}

// Handle register handler of method selector
func (c *FakeCaller) Handle(selector []byte, handler CallHandler) *FakeCaller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[hexutil.Encode(selector)] = handler
	return c
}

// Return register fixed output of method selector
func (c *FakeCaller) Return(selector, output []byte) *FakeCaller {
	return c.Handle(selector, func(common.Address, []byte) ([]byte, error) {
		return output, nil
	})
}

// Calls count of calls of method selector
func (c *FakeCaller) Calls(selector []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[hexutil.Encode(selector)]
}

// CallContract impl tokens.ContractCaller
func (c *FakeCaller) CallContract(_ context.Context, _ uint64, contract common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("call data too short")
	}
	key := hexutil.Encode(data[:4])
	c.mu.Lock()
	handler, exist := c.handlers[key]
	c.calls[key]++
	c.mu.Unlock()
	if !exist {
		return nil, fmt.Errorf("no handler of selector %v", key)
	}
	return handler(contract, data)
}
