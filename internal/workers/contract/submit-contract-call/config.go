// internal/workers/contract/submit-contract-call/config.go
package submitcontractcall

import "time"

type Config struct {
	AppID   int
	Network string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AppID:   1005,
		Network: "localnet",
		Timeout: 10 * time.Second,
	}
}
