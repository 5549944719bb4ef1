// internal/workers/lending/generate-demo-profile/models.go
package generatedemoprofile

import "lending-workers/internal/assessment"

type Input struct {
	// Seed makes the profile reproducible. Absent means a fresh draw.
	Seed *uint64 `json:"seed,omitempty"`
}

type Output struct {
	Profile     assessment.DemoProfile `json:"profile"`
	GeneratedAt string                 `json:"generatedAt"`
}
