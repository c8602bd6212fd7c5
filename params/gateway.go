package params

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
)

type gatewayFileConfig struct {
	Gateways map[string][]string // key is chain ID
}

// LoadGatewayConfigs load gateways from separate gateway config file
func LoadGatewayConfigs(gatewayFile string) (map[string][]string, error) {
	if gatewayFile == "" {
		return nil, fmt.Errorf("empty gateway config file")
	}
	if !common.FileExist(gatewayFile) {
		return nil, fmt.Errorf("gateway config file '%v' not exist", gatewayFile)
	}
	config := &gatewayFileConfig{}
	if _, err := toml.DecodeFile(gatewayFile, config); err != nil {
		return nil, fmt.Errorf("decode gateway config file failed: %w", err)
	}
	for chainID, urls := range config.Gateways {
		if _, err := strconv.ParseUint(chainID, 10, 64); err != nil {
			return nil, fmt.Errorf("wrong chain id '%v' in gateway config", chainID)
		}
		if len(urls) == 0 {
			return nil, fmt.Errorf("chain %v has empty gateways", chainID)
		}
	}
	log.Info("load gateway config file success", "file", gatewayFile, "chains", len(config.Gateways))
	return config.Gateways, nil
}
