// internal/workers/lending/assess-loan-viability/models.go
package assessloanviability

import "lending-workers/internal/assessment"

type Input struct {
	ApplicantID       string                       `json:"applicantId,omitempty"`
	Application       assessment.LoanApplication   `json:"application"`
	Community         *assessment.CommunityContext `json:"community,omitempty"`
	CommunityID       string                       `json:"communityId,omitempty"`
	IncludeMitigation bool                         `json:"includeMitigation,omitempty"`
}

// Output exposes approved and riskLevel at the top level so gateways can
// route on them without unpacking the assessment.
type Output struct {
	AssessmentID         string               `json:"assessmentId"`
	ApplicantID          string               `json:"applicantId,omitempty"`
	AssessedAt           string               `json:"assessedAt"` // ISO 8601
	CommunitySource      string               `json:"communitySource"`
	Approved             bool                 `json:"approved"`
	RiskLevel            assessment.RiskLevel `json:"riskLevel"`
	Assessment           assessment.Result    `json:"assessment"`
	MitigationStrategies []string             `json:"mitigationStrategies,omitempty"`
}

// Where the community snapshot came from
const (
	CommunitySourceInline   = "inline"
	CommunitySourceLookup   = "lookup"
	CommunitySourceDefaults = "defaults"
)
