// internal/workers/lending/get-mitigation-strategies/models.go
package getmitigationstrategies

import "lending-workers/internal/assessment"

type Input struct {
	RiskLevel assessment.RiskLevel `json:"riskLevel"`
}

type Output struct {
	RiskLevel  assessment.RiskLevel `json:"riskLevel"`
	Strategies []string             `json:"strategies"`
}
