package bridge

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/anyswap/CrossSwap-Router/cmd/utils"
	"github.com/anyswap/CrossSwap-Router/log"
)

var (
	adjustCount    = 0
	adjustInterval = 60 // seconds
)

// BlockNumberGetter latest block number of a gateway
type BlockNumberGetter interface {
	GetLatestBlockNumberOf(ctx context.Context, url string) (uint64, error)
}

// StartAdjustGatewayOrderJob adjust gateway order job
func StartAdjustGatewayOrderJob() {
	s := GetServices()
	if s == nil || s.Caller == nil {
		return
	}
	log.Info("star adjust gateway order job")

	go doAdjustGatewayOrderJob(s)
}

func doAdjustGatewayOrderJob(s *Services) {
	for {
		for _, chainID := range s.Caller.ChainIDs() {
			if utils.IsCleanuping() {
				return
			}
			gateways := s.Caller.GetGateways(chainID)
			ordered := AdjustGatewayOrder(context.Background(), s.Caller, gateways)
			s.Caller.SetGateways(chainID, ordered)
			if adjustCount%3 == 0 {
				log.Info(fmt.Sprintf("adjust gateways of chain %v", chainID), "result", ordered)
			}
		}
		for i := 0; i < adjustInterval; i++ {
			if utils.IsCleanuping() {
				return
			}
			time.Sleep(1 * time.Second)
		}
		adjustCount++
	}
}

// AdjustGatewayOrder order gateways by latest block number descending.
// Unreachable gateways have block number zero, ties keep the original order.
func AdjustGatewayOrder(ctx context.Context, getter BlockNumberGetter, gateways []string) []string {
	type weightedGateway struct {
		url    string
		height uint64
	}
	weighted := make([]weightedGateway, 0, len(gateways))
	for _, url := range gateways {
		height, err := getter.GetLatestBlockNumberOf(ctx, url)
		if err != nil {
			log.Debug("get latest block number failed", "url", url, "err", err)
		}
		weighted = append(weighted, weightedGateway{url: url, height: height})
	}
	slices.SortStableFunc(weighted, func(a, b weightedGateway) bool {
		return a.height > b.height
	})
	result := make([]string, 0, len(weighted))
	for _, w := range weighted {
		result = append(result, w.url)
	}
	return result
}
