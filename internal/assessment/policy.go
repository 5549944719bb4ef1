package assessment

// Policy holds the numeric constants of the scoring and pricing rules.
type Policy struct {
	ApprovalThreshold int `mapstructure:"approval_threshold"`
	LowRiskThreshold  int `mapstructure:"low_risk_threshold"`

	DefaultGuarantors          int `mapstructure:"default_guarantors"`
	StrongSupportMinGuarantors int `mapstructure:"strong_support_min_guarantors"`

	DefaultAvgIncome float64 `mapstructure:"default_avg_income"`
	// MinAvgIncome is the smallest income treated as usable for the
	// loan-to-income ratio.
	MinAvgIncome        float64 `mapstructure:"min_avg_income"`
	ReferenceMultiplier float64 `mapstructure:"reference_multiplier"`

	PaymentHistoryProbability float64 `mapstructure:"payment_history_probability"`
	PaymentHistoryPoints      int     `mapstructure:"payment_history_points"`

	RegionalStabilityMin  int `mapstructure:"regional_stability_min"`
	RegionalStabilitySpan int `mapstructure:"regional_stability_span"`
	StableRegionAbove     int `mapstructure:"stable_region_above"`

	PlanMinLength int `mapstructure:"plan_min_length"`
	PlanPoints    int `mapstructure:"plan_points"`

	BaseInterestRate float64 `mapstructure:"base_interest_rate"`
	MinInterestRate  float64 `mapstructure:"min_interest_rate"`
	PointsPerPercent float64 `mapstructure:"points_per_percent"`

	IncomeShare        float64 `mapstructure:"income_share"`
	AmountScoreDivisor int     `mapstructure:"amount_score_divisor"`
	// CapApprovedAmount limits the approved amount to the base amount even
	// when the score multiplier exceeds 1.
	CapApprovedAmount bool `mapstructure:"cap_approved_amount"`

	RepaymentPeriodDays int `mapstructure:"repayment_period_days"`
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return Policy{
		ApprovalThreshold:          60,
		LowRiskThreshold:           80,
		DefaultGuarantors:          2,
		StrongSupportMinGuarantors: 2,
		DefaultAvgIncome:           300,
		MinAvgIncome:               1e-9,
		ReferenceMultiplier:        10,
		PaymentHistoryProbability:  0.75,
		PaymentHistoryPoints:       15,
		RegionalStabilityMin:       5,
		RegionalStabilitySpan:      10,
		StableRegionAbove:          10,
		PlanMinLength:              50,
		PlanPoints:                 10,
		BaseInterestRate:           22,
		MinInterestRate:            8,
		PointsPerPercent:           3,
		IncomeShare:                0.5,
		AmountScoreDivisor:         80,
		RepaymentPeriodDays:        90,
	}
}
