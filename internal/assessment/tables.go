package assessment

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Category is one row of the business category table.
type Category struct {
	Name        string `mapstructure:"name" json:"name"`
	Score       int    `mapstructure:"score" json:"score"`
	Demand      string `mapstructure:"demand" json:"demand"`
	Success     string `mapstructure:"success" json:"success"`
	Description string `mapstructure:"description" json:"description"`
}

// Tier awards Points when a value crosses Bound. How Bound is compared
// depends on the table that owns the tier.
type Tier struct {
	Bound  float64 `mapstructure:"bound" json:"bound"`
	Points int     `mapstructure:"points" json:"points"`
	Factor string  `mapstructure:"factor" json:"factor"`
}

// TierTable is an ordered list of tiers with a catch-all.
type TierTable struct {
	Tiers     []Tier `mapstructure:"tiers" json:"tiers"`
	Otherwise Tier   `mapstructure:"otherwise" json:"otherwise"`
}

// MitigationTable lists monitoring actions per risk tier.
type MitigationTable struct {
	Low    []string `mapstructure:"low" json:"low"`
	Medium []string `mapstructure:"medium" json:"medium"`
	High   []string `mapstructure:"high" json:"high"`
}

// Tables is the reference data the engine scores against.
type Tables struct {
	Categories []Category `mapstructure:"categories" json:"categories"`
	Unknown    Category   `mapstructure:"unknown" json:"unknown"`
	// Guarantors tiers match when count >= Bound, first match wins.
	Guarantors TierTable `mapstructure:"guarantors" json:"guarantors"`
	// Sustainability tiers match when ratio <= Bound, first match wins.
	Sustainability TierTable       `mapstructure:"sustainability" json:"sustainability"`
	Mitigation     MitigationTable `mapstructure:"mitigation" json:"mitigation"`
}

// DefaultTables returns the reference tables.
func DefaultTables() Tables {
	return Tables{
		Categories: []Category{
			{Name: string(SmallBusiness), Score: 35, Demand: "high", Success: "medium", Description: "Trading and retail have consistent demand"},
			{Name: string(Agriculture), Score: 40, Demand: "essential", Success: "high", Description: "Food production is always needed"},
			{Name: string(Education), Score: 30, Demand: "medium", Success: "medium", Description: "Education services have stable long-term demand"},
			{Name: string(Healthcare), Score: 45, Demand: "critical", Success: "high", Description: "Healthcare is essential and recession-proof"},
			{Name: string(Handicrafts), Score: 25, Demand: "medium", Success: "variable", Description: "Market dependent but culturally valuable"},
		},
		Unknown: Category{Score: 10, Demand: "unknown", Success: "low", Description: "No market data for this business category"},
		Guarantors: TierTable{
			Tiers: []Tier{
				{Bound: 3, Points: 30, Factor: "Strong community network reduces default risk significantly"},
				{Bound: 2, Points: 20, Factor: "Adequate community support provides social collateral"},
				{Bound: 1, Points: 10, Factor: "Limited community support increases monitoring needs"},
			},
			Otherwise: Tier{Points: 0, Factor: "No community guarantors presents high default risk"},
		},
		Sustainability: TierTable{
			Tiers: []Tier{
				{Bound: 0.5, Points: 25, Factor: "Loan amount highly sustainable for local income levels"},
				{Bound: 1.0, Points: 15, Factor: "Loan amount manageable with careful financial planning"},
				{Bound: 2.0, Points: 8, Factor: "Loan amount stretches local income capacity"},
			},
			Otherwise: Tier{Points: 2, Factor: "Loan amount may exceed realistic repayment capacity"},
		},
		Mitigation: MitigationTable{
			High:   []string{"Reduce loan amount by 50%", "Require additional community guarantors", "Implement weekly check-ins"},
			Medium: []string{"Monthly progress reviews", "Community mentor assignment"},
			Low:    []string{"Standard quarterly reviews", "Early repayment incentives available"},
		},
	}
}

// LoadTables reads a YAML or JSON tables file and overlays it on the
// defaults. Categories are merged by name and the unknown row field by
// field; tier tables present in the file replace the defaults wholesale.
func LoadTables(path string) (Tables, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Tables{}, fmt.Errorf("failed to read tables file %s: %w", path, err)
	}

	var loaded Tables
	if err := v.Unmarshal(&loaded); err != nil {
		return Tables{}, fmt.Errorf("failed to decode tables file %s: %w", path, err)
	}

	if err := checkCategoryNames(loaded.Categories); err != nil {
		return Tables{}, fmt.Errorf("invalid tables file %s: %w", path, err)
	}

	tables := DefaultTables().overlay(loaded, v)
	if err := tables.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return tables, nil
}

func (t Tables) overlay(o Tables, v *viper.Viper) Tables {
	for _, c := range o.Categories {
		replaced := false
		for i := range t.Categories {
			if t.Categories[i].Name == c.Name {
				t.Categories[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			t.Categories = append(t.Categories, c)
		}
	}
	if v.IsSet("unknown.score") {
		t.Unknown.Score = o.Unknown.Score
	}
	if v.IsSet("unknown.demand") {
		t.Unknown.Demand = o.Unknown.Demand
	}
	if v.IsSet("unknown.success") {
		t.Unknown.Success = o.Unknown.Success
	}
	if v.IsSet("unknown.description") {
		t.Unknown.Description = o.Unknown.Description
	}
	if v.IsSet("guarantors") {
		t.Guarantors = o.Guarantors
	}
	if v.IsSet("sustainability") {
		t.Sustainability = o.Sustainability
	}
	if len(o.Mitigation.Low) > 0 {
		t.Mitigation.Low = o.Mitigation.Low
	}
	if len(o.Mitigation.Medium) > 0 {
		t.Mitigation.Medium = o.Mitigation.Medium
	}
	if len(o.Mitigation.High) > 0 {
		t.Mitigation.High = o.Mitigation.High
	}
	return t
}

// Validate checks the tables are usable by the engine.
func (t Tables) Validate() error {
	if err := checkCategoryNames(t.Categories); err != nil {
		return err
	}
	if strings.TrimSpace(t.Unknown.Success) == "" || strings.TrimSpace(t.Unknown.Description) == "" {
		return fmt.Errorf("unknown category needs success and description")
	}

	for i := 1; i < len(t.Guarantors.Tiers); i++ {
		if t.Guarantors.Tiers[i].Bound >= t.Guarantors.Tiers[i-1].Bound {
			return fmt.Errorf("guarantor tiers must be in descending bound order")
		}
	}
	for i := 1; i < len(t.Sustainability.Tiers); i++ {
		if t.Sustainability.Tiers[i].Bound <= t.Sustainability.Tiers[i-1].Bound {
			return fmt.Errorf("sustainability tiers must be in ascending bound order")
		}
	}

	if len(t.Mitigation.Low) == 0 || len(t.Mitigation.Medium) == 0 || len(t.Mitigation.High) == 0 {
		return fmt.Errorf("mitigation strategies required for every risk level")
	}
	return nil
}

func checkCategoryNames(categories []Category) error {
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true
	}
	return nil
}

func (t Tables) index() map[BusinessType]Category {
	idx := make(map[BusinessType]Category, len(t.Categories))
	for _, c := range t.Categories {
		idx[BusinessType(c.Name)] = c
	}
	return idx
}
