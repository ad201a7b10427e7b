package model

import "testing"

func TestParseRiskProfile(t *testing.T) {
	for _, valid := range []string{"conservative", "medium", "aggressive"} {
		profile, err := ParseRiskProfile(valid)
		if err != nil {
			t.Errorf("ParseRiskProfile(%q) error: %v", valid, err)
		}
		if string(profile) != valid {
			t.Errorf("ParseRiskProfile(%q) = %q", valid, profile)
		}
	}

	for _, invalid := range []string{"", "Medium", "yolo"} {
		if _, err := ParseRiskProfile(invalid); err == nil {
			t.Errorf("ParseRiskProfile(%q) should fail", invalid)
		}
	}
}

func TestPolicyBand(t *testing.T) {
	cases := []struct {
		profile  RiskProfile
		min, max float64
	}{
		{RiskConservative, 2, 5},
		{RiskMedium, 5, 10},
		{RiskAggressive, 10, 20},
	}
	for _, tc := range cases {
		min, max := tc.profile.PolicyBand()
		if min != tc.min || max != tc.max {
			t.Errorf("%s band = [%v, %v], want [%v, %v]", tc.profile, min, max, tc.min, tc.max)
		}
	}
}
