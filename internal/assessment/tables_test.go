// internal/assessment/tables_test.go
package assessment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTablesFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTables_OverlaysDefaults(t *testing.T) {
	path := writeTablesFile(t, "tables.yaml", `
categories:
  - name: Healthcare
    score: 50
    demand: critical
    success: high
    description: Clinics are always busy
  - name: Fishing
    score: 20
    demand: seasonal
    success: variable
    description: Catch depends on the season
mitigation:
  high:
    - Require a co-signer
`)

	tables, err := LoadTables(path)
	require.NoError(t, err)

	e := newTestEngine(t, WithTables(tables))

	healthcare, ok := e.Category(Healthcare)
	require.True(t, ok)
	assert.Equal(t, 50, healthcare.Score)

	fishing, ok := e.Category("Fishing")
	require.True(t, ok)
	assert.Equal(t, "seasonal", fishing.Demand)

	agriculture, ok := e.Category(Agriculture)
	require.True(t, ok)
	assert.Equal(t, 40, agriculture.Score)

	assert.Equal(t, []string{"Require a co-signer"}, e.MitigationStrategies(RiskHigh))
	assert.Equal(t, DefaultTables().Mitigation.Medium, e.MitigationStrategies(RiskMedium))
	assert.Equal(t, DefaultTables().Guarantors, tables.Guarantors)

	result, err := e.Assess(LoanApplication{Purpose: "Fishing", Amount: 20}, CommunityContext{}, forcedDraws{stability: 5})
	require.NoError(t, err)
	assert.Equal(t, "Business type: Fishing - Catch depends on the season", result.AssessmentFactors[0])
	assert.Equal(t, 60, result.ViabilityScore)
}

func TestLoadTables_ReplacesTierTables(t *testing.T) {
	path := writeTablesFile(t, "tables.json", `{
  "guarantors": {
    "tiers": [{"bound": 5, "points": 40, "factor": "Whole village vouches"}],
    "otherwise": {"points": 5, "factor": "Few vouchers"}
  }
}`)

	tables, err := LoadTables(path)
	require.NoError(t, err)
	require.Len(t, tables.Guarantors.Tiers, 1)

	e := newTestEngine(t, WithTables(tables))
	result, err := e.Assess(LoanApplication{Purpose: Education, Amount: 20}, Guarantors(5), forcedDraws{stability: 5})
	require.NoError(t, err)
	assert.Equal(t, "Whole village vouches", result.AssessmentFactors[1])
	assert.Equal(t, 30+40+15+5, result.ViabilityScore)
}

func TestLoadTables_PartialUnknownKeepsDefaults(t *testing.T) {
	path := writeTablesFile(t, "unknown.yaml", `
unknown:
  score: 12
`)

	tables, err := LoadTables(path)
	require.NoError(t, err)

	def := DefaultTables().Unknown
	assert.Equal(t, 12, tables.Unknown.Score)
	assert.Equal(t, def.Success, tables.Unknown.Success)
	assert.Equal(t, def.Description, tables.Unknown.Description)
	assert.Equal(t, def.Demand, tables.Unknown.Demand)

	e := newTestEngine(t, WithTables(tables))
	result, err := e.Assess(LoanApplication{Purpose: "Fishing", Amount: 400}, Guarantors(0).WithIncome(300), forcedDraws{stability: 5})
	require.NoError(t, err)
	assert.Equal(t, "Business type: Fishing - "+def.Description, result.AssessmentFactors[0])
	assert.Equal(t, "low", result.BusinessViability)
	assert.Equal(t, 12+0+2+0+5, result.ViabilityScore)
}

func TestLoadTables_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{
			name:    "missing file",
			file:    "",
			errMsg:  "failed to read tables file",
		},
		{
			name: "duplicate category",
			file: "dup.yaml",
			content: `
categories:
  - name: Bakery
    score: 20
  - name: Bakery
    score: 25
`,
			errMsg: "duplicate category",
		},
		{
			name: "duplicate default category within file",
			file: "dup-healthcare.yaml",
			content: `
categories:
  - name: Healthcare
    score: 50
  - name: Healthcare
    score: 55
`,
			errMsg: "duplicate category",
		},
		{
			name: "unknown row emptied",
			file: "unknown-empty.yaml",
			content: `
unknown:
  success: ""
`,
			errMsg: "unknown category needs success and description",
		},
		{
			name: "unordered tiers",
			file: "tiers.yaml",
			content: `
sustainability:
  tiers:
    - bound: 1.0
      points: 15
    - bound: 0.5
      points: 25
`,
			errMsg: "ascending bound order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.file != "" {
				path = writeTablesFile(t, tt.file, tt.content)
			}
			_, err := LoadTables(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.AmountScoreDivisor = 0
	_, err := NewEngine(WithPolicy(p))
	assert.Error(t, err)
}
