// Package assessment scores micro-loan applications against community data
// and produces an approval decision with pricing and a factor trail.
package assessment

// BusinessType is the declared purpose of a loan.
type BusinessType string

const (
	SmallBusiness BusinessType = "Small Business"
	Agriculture   BusinessType = "Agriculture"
	Education     BusinessType = "Education"
	Healthcare    BusinessType = "Healthcare"
	Handicrafts   BusinessType = "Handicrafts"
)

// RiskLevel is the coarse risk tier derived from the viability score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the known tiers.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// LoanApplication is the applicant's request.
type LoanApplication struct {
	Purpose             BusinessType `json:"purpose"`
	Amount              float64      `json:"amount"`
	BusinessDescription string       `json:"businessDescription,omitempty"`
}

// CommunityContext carries the local snapshot the assessment runs against.
// Nil fields are absent and replaced by policy defaults.
type CommunityContext struct {
	GuarantorCount *int     `json:"guarantorCount,omitempty"`
	AvgLocalIncome *float64 `json:"avgLocalIncome,omitempty"`
}

// Guarantors returns a context with only the guarantor count set.
func Guarantors(n int) CommunityContext {
	return CommunityContext{GuarantorCount: &n}
}

// WithIncome returns a copy of c carrying the given average local income.
func (c CommunityContext) WithIncome(income float64) CommunityContext {
	c.AvgLocalIncome = &income
	return c
}

// Result is the outcome of one assessment.
type Result struct {
	Approved          bool      `json:"approved"`
	ViabilityScore    int       `json:"viabilityScore"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	InterestRate      float64   `json:"interestRate"`
	MaxApprovedAmount float64   `json:"maxApprovedAmount"`
	RepaymentPeriod   int       `json:"repaymentPeriod"`
	AssessmentFactors []string  `json:"assessmentFactors"`
	BusinessViability string    `json:"businessViability"`
	CommunitySupport  string    `json:"communitySupport"`
}

// PhoneActivity summarises mobile money usage in a demo profile.
type PhoneActivity struct {
	AccountAge       float64 `json:"accountAge"`
	RegularTopups    bool    `json:"regularTopups"`
	PaymentFrequency int     `json:"paymentFrequency"`
}

// SocialFactors summarises community standing in a demo profile.
type SocialFactors struct {
	CommunityEndorsements int  `json:"communityEndorsements"`
	BusinessExperience    bool `json:"businessExperience"`
	FamilySupport         bool `json:"familySupport"`
}

// EconomicIndicators summarises means in a demo profile.
type EconomicIndicators struct {
	EstimatedIncome float64 `json:"estimatedIncome"`
	AssetOwnership  bool    `json:"assetOwnership"`
	BusinessAssets  bool    `json:"businessAssets"`
}

// DemoProfile is a synthetic applicant profile used for demonstrations.
type DemoProfile struct {
	PhoneActivity      PhoneActivity      `json:"phoneActivity"`
	SocialFactors      SocialFactors      `json:"socialFactors"`
	EconomicIndicators EconomicIndicators `json:"economicIndicators"`
}
