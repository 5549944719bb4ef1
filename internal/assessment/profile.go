package assessment

// GenerateDemoProfile draws a synthetic applicant profile for display.
// Nothing in the scoring path reads it.
func GenerateDemoProfile(src Source) DemoProfile {
	if src == nil {
		src = NewSource()
	}
	return DemoProfile{
		PhoneActivity: PhoneActivity{
			AccountAge:       120 + src.Float64()*500,
			RegularTopups:    src.Float64() > 0.3,
			PaymentFrequency: 5 + src.IntN(20),
		},
		SocialFactors: SocialFactors{
			CommunityEndorsements: 1 + src.IntN(4),
			BusinessExperience:    src.Float64() > 0.5,
			FamilySupport:         src.Float64() > 0.4,
		},
		EconomicIndicators: EconomicIndicators{
			EstimatedIncome: 200 + src.Float64()*400,
			AssetOwnership:  src.Float64() > 0.6,
			BusinessAssets:  src.Float64() > 0.4,
		},
	}
}
