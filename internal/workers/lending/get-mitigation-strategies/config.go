// internal/workers/lending/get-mitigation-strategies/config.go
package getmitigationstrategies

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
