package assessment

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// evaluation accumulates score and factors while rules run.
type evaluation struct {
	app          LoanApplication
	src          Source
	category     Category
	guarantors   int
	income       float64
	incomeUsable bool
	score        int
	factors      []string
}

// rule contributes points and exactly one factor.
type rule func(e *Engine, ev *evaluation)

func (e *Engine) newEvaluation(app LoanApplication, community CommunityContext, src Source) *evaluation {
	guarantors := e.policy.DefaultGuarantors
	if community.GuarantorCount != nil {
		guarantors = *community.GuarantorCount
	}
	income := e.policy.DefaultAvgIncome
	if community.AvgLocalIncome != nil {
		income = *community.AvgLocalIncome
	}
	usable := !math.IsNaN(income) && !math.IsInf(income, 0) && income > e.policy.MinAvgIncome

	category, _ := e.Category(app.Purpose)
	return &evaluation{
		app:          app,
		src:          src,
		category:     category,
		guarantors:   guarantors,
		income:       income,
		incomeUsable: usable,
		factors:      make([]string, 0, 6),
	}
}

func (ev *evaluation) add(points int, factor string) {
	ev.score += points
	ev.factors = append(ev.factors, factor)
}

func businessViability(_ *Engine, ev *evaluation) {
	ev.add(ev.category.Score, fmt.Sprintf("Business type: %s - %s", ev.app.Purpose, ev.category.Description))
}

func communitySupport(e *Engine, ev *evaluation) {
	for _, t := range e.tables.Guarantors.Tiers {
		if float64(ev.guarantors) >= t.Bound {
			ev.add(t.Points, t.Factor)
			return
		}
	}
	o := e.tables.Guarantors.Otherwise
	ev.add(o.Points, o.Factor)
}

func economicSustainability(e *Engine, ev *evaluation) {
	if ev.incomeUsable {
		ratio := ev.app.Amount * e.policy.ReferenceMultiplier / ev.income
		for _, t := range e.tables.Sustainability.Tiers {
			if ratio <= t.Bound {
				ev.add(t.Points, t.Factor)
				return
			}
		}
	}
	o := e.tables.Sustainability.Otherwise
	ev.add(o.Points, o.Factor)
}

func paymentHistory(e *Engine, ev *evaluation) {
	if ev.src.Float64() > 1-e.policy.PaymentHistoryProbability {
		ev.add(e.policy.PaymentHistoryPoints, "Regular mobile payment activity indicates financial discipline")
		return
	}
	ev.add(0, "Limited payment history requires closer monitoring")
}

func regionalStability(e *Engine, ev *evaluation) {
	stability := e.policy.RegionalStabilityMin + ev.src.IntN(e.policy.RegionalStabilitySpan)
	env := "moderate"
	if stability > e.policy.StableRegionAbove {
		env = "stable"
	}
	ev.add(stability, fmt.Sprintf("Regional economic conditions: %s environment", env))
}

// businessPlan only adds a factor when the bonus applies. Length is in
// UTF-16 code units, so a character outside the BMP counts twice.
func businessPlan(e *Engine, ev *evaluation) {
	if utf16Len(ev.app.BusinessDescription) > e.policy.PlanMinLength {
		ev.add(e.policy.PlanPoints, "Detailed business plan demonstrates preparation and commitment")
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
