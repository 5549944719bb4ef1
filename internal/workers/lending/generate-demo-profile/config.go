// internal/workers/lending/generate-demo-profile/config.go
package generatedemoprofile

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
