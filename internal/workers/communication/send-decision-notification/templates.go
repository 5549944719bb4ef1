// internal/workers/communication/send-decision-notification/templates.go
package senddecisionnotification

import (
	"strings"
	"text/template"

	"lending-workers/internal/assessment"

	"github.com/shopspring/decimal"
)

var templateFuncs = template.FuncMap{
	"money": func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
	"pct":   func(v float64) string { return decimal.NewFromFloat(v).StringFixed(1) },
}

var templates = template.Must(template.New("decision").Funcs(templateFuncs).Parse(`
{{define "sms-approved"}}{{.Name}}, your {{.Purpose}} loan is approved: up to {{money .Result.MaxApprovedAmount}} AFN at {{pct .Result.InterestRate}}% over {{.Result.RepaymentPeriod}} days.{{end}}
{{define "sms-declined"}}{{.Name}}, your {{.Purpose}} loan was not approved this time (score {{.Result.ViabilityScore}}). More community guarantors can help.{{end}}
{{define "subject-approved"}}Your loan application is approved{{end}}
{{define "subject-declined"}}Update on your loan application{{end}}
{{define "email-approved"}}Dear {{.Name}},

Your {{.Purpose}} loan application has been approved.

Maximum amount: {{money .Result.MaxApprovedAmount}} AFN
Interest rate: {{pct .Result.InterestRate}}%
Repayment period: {{.Result.RepaymentPeriod}} days
Viability score: {{.Result.ViabilityScore}} ({{.Result.RiskLevel}} risk)
{{if .Result.AssessmentFactors}}
What we considered:
{{range .Result.AssessmentFactors}}- {{.}}
{{end}}{{end}}
Afghan Community Lending{{end}}
{{define "email-declined"}}Dear {{.Name}},

We could not approve your {{.Purpose}} loan application this time.

Viability score: {{.Result.ViabilityScore}} ({{.Result.RiskLevel}} risk)
{{if .Result.AssessmentFactors}}
What we considered:
{{range .Result.AssessmentFactors}}- {{.}}
{{end}}{{end}}
Adding community guarantors or a detailed business plan improves a new application.

Afghan Community Lending{{end}}
`))

type message struct {
	Subject string
	SMS     string
	Email   string
}

func renderMessage(input *Input) (message, error) {
	suffix := "declined"
	if input.Assessment.Approved {
		suffix = "approved"
	}

	data := struct {
		Name    string
		Purpose string
		Result  assessment.Result
	}{
		Name:    fallback(input.ApplicantName, "Applicant"),
		Purpose: fallback(input.Purpose, "business"),
		Result:  input.Assessment,
	}

	var m message
	for name, dst := range map[string]*string{
		"subject-" + suffix: &m.Subject,
		"sms-" + suffix:     &m.SMS,
		"email-" + suffix:   &m.Email,
	} {
		var b strings.Builder
		if err := templates.ExecuteTemplate(&b, name, data); err != nil {
			return message{}, err
		}
		*dst = b.String()
	}
	return m, nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
