package tax

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Override adjusts or adds one jurisdiction's tables before the engine
// registry is sealed. Loaded from YAML at process start; zero fields leave
// the built-in values alone.
type Override struct {
	Code string `yaml:"code"`
	Year int    `yaml:"year"`

	FlatRateMilliPct           int64            `yaml:"flat_rate_milli_pct"`
	StandardDeductionCents     map[string]int64 `yaml:"standard_deduction_cents"`
	ExemptionPerAllowanceCents int64            `yaml:"exemption_per_allowance_cents"`
	CreditCents                map[string]int64 `yaml:"credit_cents"`

	SDI *ContributionOverride `yaml:"sdi"`
	SUI *ContributionOverride `yaml:"sui"`
}

type ContributionOverride struct {
	RateMilliPct  int64 `yaml:"rate_milli_pct"`
	WageBaseCents int64 `yaml:"wage_base_cents"`
}

type overridesFile struct {
	Version       int        `yaml:"version"`
	Jurisdictions []Override `yaml:"jurisdictions"`
}

// LoadOverrides parses a YAML overrides document. An empty path means no
// overrides.
func LoadOverrides(path string) ([]Override, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f overridesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("tax: unsupported overrides version %d", f.Version)
	}
	return f.Jurisdictions, nil
}

func statusMap(m map[string]int64) (map[FilingStatus]int64, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[FilingStatus]int64, len(m))
	for k, v := range m {
		switch s := FilingStatus(strings.ToUpper(strings.TrimSpace(k))); s {
		case FilingSingle, FilingMarriedJointly, FilingMarriedSeparately, FilingHeadOfHousehold:
			out[s] = v
		default:
			return nil, fmt.Errorf("tax: unknown filing status %q", k)
		}
	}
	return out, nil
}

func (o Override) apply(byYear map[int]map[string]Rule) error {
	code := strings.ToUpper(strings.TrimSpace(o.Code))
	if code == "" {
		return errors.New("tax: override code is required")
	}
	if o.Year == 0 {
		return errors.New("tax: override year is required")
	}

	rules, ok := byYear[o.Year]
	if !ok {
		rules = map[string]Rule{}
		byYear[o.Year] = rules
	}

	existing, exists := rules[code]
	rule, ok := existing.(*jurisdictionRule)
	if exists && !ok {
		return fmt.Errorf("tax: jurisdiction %q does not accept overrides", code)
	}
	if !ok {
		rule = &jurisdictionRule{code: code}
		rules[code] = rule
	}

	if o.FlatRateMilliPct > 0 {
		rule.flatRateMilliPct = o.FlatRateMilliPct
		rule.bands = nil
	}
	ded, err := statusMap(o.StandardDeductionCents)
	if err != nil {
		return err
	}
	if ded != nil {
		rule.deductionCents = ded
	}
	if o.ExemptionPerAllowanceCents > 0 {
		rule.exemptionPerAllowanceCents = o.ExemptionPerAllowanceCents
	}
	credit, err := statusMap(o.CreditCents)
	if err != nil {
		return err
	}
	if credit != nil {
		rule.creditCents = credit
	}
	if o.SDI != nil {
		rule.sdi = &cappedContribution{RateMilliPct: o.SDI.RateMilliPct, WageBaseCents: o.SDI.WageBaseCents}
	}
	if o.SUI != nil {
		rule.sui = &cappedContribution{RateMilliPct: o.SUI.RateMilliPct, WageBaseCents: o.SUI.WageBaseCents}
	}
	return nil
}
