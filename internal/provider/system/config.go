// Package system provides the system provider for host-level tuning,
// currently zram swap sizing ahead of a memory-hungry compile.
package system

import (
	"github.com/mvaldez/orinup/internal/domain/config"
)

// DefaultZramConfig is where Debian's zramswap service reads its size.
const DefaultZramConfig = "/etc/default/zramswap"

// Config represents the system section of the configuration.
type Config struct {
	// SwapMB is the desired zram swap size in megabytes. Zero disables
	// the resize step.
	SwapMB int
	// ZramConfig overrides the zram config file path.
	ZramConfig string
}

// ParseConfig parses the system configuration from a raw map.
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	swap, err := config.IntFromSection(raw, "swap_mb", 0)
	if err != nil {
		return nil, err
	}
	if swap < 0 {
		return nil, &config.UserError{
			Code:    config.ErrCodeSectionInvalid,
			Message: "'swap_mb' must not be negative",
			Context: "system.swap_mb",
		}
	}
	cfg.SwapMB = swap

	if cfg.ZramConfig, err = config.StringFromSection(raw, "zram_config", DefaultZramConfig); err != nil {
		return nil, err
	}

	return cfg, nil
}
