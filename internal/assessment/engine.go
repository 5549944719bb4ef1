package assessment

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for negative or non-finite loan amounts.
var ErrInvalidAmount = errors.New("loan amount must be a finite, non-negative number")

// Engine scores loan applications. It is safe for concurrent use.
type Engine struct {
	policy     Policy
	tables     Tables
	categories map[BusinessType]Category
	rules      []rule
}

// Option configures an Engine.
type Option func(*Engine)

// WithTables replaces the reference tables.
func WithTables(t Tables) Option {
	return func(e *Engine) { e.tables = t }
}

// WithPolicy replaces the reference policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// NewEngine builds an engine over the reference tables and policy unless
// overridden.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		policy: DefaultPolicy(),
		tables: DefaultTables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables: %w", err)
	}
	if e.policy.AmountScoreDivisor <= 0 || e.policy.PointsPerPercent <= 0 || e.policy.RegionalStabilitySpan <= 0 {
		return nil, fmt.Errorf("invalid policy: divisors and spans must be positive")
	}
	e.categories = e.tables.index()
	e.rules = []rule{
		businessViability,
		communitySupport,
		economicSustainability,
		paymentHistory,
		regionalStability,
		businessPlan,
	}
	return e, nil
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() Policy { return e.policy }

// Assess scores app against community using draws from src. A nil src gets
// a fresh generator.
func (e *Engine) Assess(app LoanApplication, community CommunityContext, src Source) (Result, error) {
	if math.IsNaN(app.Amount) || math.IsInf(app.Amount, 0) || app.Amount < 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAmount, app.Amount)
	}
	if src == nil {
		src = NewSource()
	}

	ev := e.newEvaluation(app, community, src)
	for _, r := range e.rules {
		r(e, ev)
	}

	score := ev.score
	approved := score >= e.policy.ApprovalThreshold

	result := Result{
		Approved:          approved,
		ViabilityScore:    score,
		RiskLevel:         e.classifyRisk(score),
		RepaymentPeriod:   e.policy.RepaymentPeriodDays,
		AssessmentFactors: ev.factors,
		BusinessViability: ev.category.Success,
		CommunitySupport:  e.classifySupport(ev.guarantors),
	}
	if approved {
		result.InterestRate = e.calculateInterestRate(score)
		result.MaxApprovedAmount = e.calculateMaxApprovedAmount(app.Amount, ev.income, ev.incomeUsable, score)
	}
	return result, nil
}

// MitigationStrategies returns the monitoring actions for a risk tier.
// Unrecognised tiers get the low-risk list.
func (e *Engine) MitigationStrategies(level RiskLevel) []string {
	var src []string
	switch level {
	case RiskHigh:
		src = e.tables.Mitigation.High
	case RiskMedium:
		src = e.tables.Mitigation.Medium
	default:
		src = e.tables.Mitigation.Low
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Category returns the table row used for a business type.
func (e *Engine) Category(purpose BusinessType) (Category, bool) {
	c, ok := e.categories[purpose]
	if !ok {
		return e.tables.Unknown, false
	}
	return c, true
}

func (e *Engine) classifyRisk(score int) RiskLevel {
	switch {
	case score >= e.policy.LowRiskThreshold:
		return RiskLow
	case score >= e.policy.ApprovalThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func (e *Engine) classifySupport(guarantors int) string {
	if guarantors >= e.policy.StrongSupportMinGuarantors {
		return "strong"
	}
	return "limited"
}

// calculateInterestRate drops the base rate one point per PointsPerPercent
// score points above the approval threshold, floored at MinInterestRate and
// rounded to one decimal.
func (e *Engine) calculateInterestRate(score int) float64 {
	above := decimal.NewFromInt(int64(score - e.policy.ApprovalThreshold))
	rate := decimal.NewFromFloat(e.policy.BaseInterestRate).
		Sub(above.Div(decimal.NewFromFloat(e.policy.PointsPerPercent)))
	floor := decimal.NewFromFloat(e.policy.MinInterestRate)
	if rate.LessThan(floor) {
		rate = floor
	}
	return rate.Round(1).InexactFloat64()
}

// calculateMaxApprovedAmount scales min(amount, income*share) by
// score/AmountScoreDivisor and floors the result. The multiplier is not
// capped at 1 unless the policy says so.
func (e *Engine) calculateMaxApprovedAmount(amount, income float64, incomeUsable bool, score int) float64 {
	base := decimal.Zero
	if incomeUsable {
		base = decimal.Min(
			decimal.NewFromFloat(amount),
			decimal.NewFromFloat(income).Mul(decimal.NewFromFloat(e.policy.IncomeShare)),
		)
	}
	if base.IsNegative() {
		base = decimal.Zero
	}

	approved := base.Mul(decimal.NewFromInt(int64(score))).
		Div(decimal.NewFromInt(int64(e.policy.AmountScoreDivisor))).
		Floor()
	if e.policy.CapApprovedAmount && approved.GreaterThan(base) {
		approved = base.Floor()
	}
	return approved.InexactFloat64()
}

var defaultEngine, _ = NewEngine()

// Assess scores an application with the reference tables and policy.
func Assess(app LoanApplication, community CommunityContext, src Source) (Result, error) {
	return defaultEngine.Assess(app, community, src)
}

// GetRiskMitigationStrategies returns the reference strategies for a result.
func GetRiskMitigationStrategies(r Result) []string {
	return defaultEngine.MitigationStrategies(r.RiskLevel)
}
