// internal/workers/lending/assess-loan-viability/config.go
package assessloanviability

import "time"

type Config struct {
	Timeout time.Duration
	// IncludeMitigation attaches mitigation strategies to every result, not
	// only when the job asks for them.
	IncludeMitigation bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
