package bridge

import (
	"errors"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
)

// ReloadGatewayConfig reload gateways from gateway config file.
// support modify gateways of exist chains
func ReloadGatewayConfig(gatewayFile string) error {
	s := GetServices()
	if s == nil || s.Caller == nil {
		return errors.New("router services are not initialized")
	}
	if gatewayFile == "" {
		gatewayFile = s.Config.GatewayConfigFile
	}
	gateways, err := params.LoadGatewayConfigs(gatewayFile)
	if err != nil {
		return err
	}
	chainGateways, err := convertGateways(gateways)
	if err != nil {
		return err
	}
	for chainID, urls := range chainGateways {
		if s.Config.GetChainConfig(chainID) == nil {
			log.Warn("[reload] ignore gateways of unknown chain", "chainID", chainID)
			continue
		}
		s.Caller.SetGateways(chainID, urls)
		log.Info("[reload] set gateways", "chainID", chainID, "gateways", len(urls))
	}
	return nil
}
