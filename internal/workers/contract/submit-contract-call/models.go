// internal/workers/contract/submit-contract-call/models.go
package submitcontractcall

import "lending-workers/internal/contract"

type Input struct {
	Method string `json:"method"`
	contract.Args
}

type Output struct {
	Network string           `json:"network"`
	Receipt contract.Receipt `json:"receipt"`
	Message string           `json:"message"`
}
