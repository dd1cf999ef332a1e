package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"travel_risk/internal/domain"
)

// rawSubAssessment accepts both key spellings the model is told about
type rawSubAssessment struct {
	Level     string   `json:"level"`
	RiskLevel string   `json:"risk_level"`
	Summary   flexText `json:"summary"`
	Notes     flexText `json:"notes"`
}

type rawReport struct {
	OverallRiskScore        *float64          `json:"overall_risk_score"`
	RiskLevel               string            `json:"risk_level"`
	PoliticalAndWarRisk     *rawSubAssessment `json:"political_and_war_risk"`
	LabourLawAndImmigration *rawSubAssessment `json:"labour_law_and_immigration"`
	HealthAndSafety         *rawSubAssessment `json:"health_and_safety"`
	KeyRiskFactors          flexText          `json:"key_risk_factors"`
	Recommendations         flexText          `json:"recommendations"`
}

// flexText decodes either a string or a list of strings
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexText(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("expected string or list of strings")
	}
	*f = flexText(strings.Join(list, "\n"))
	return nil
}

// Normalize parses provider output into the fixed report shape
func Normalize(content string) (*domain.RiskReport, error) {
	content = stripCodeFence(content)
	var raw rawReport
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode risk report: %w", err)
	}
	if raw.OverallRiskScore == nil {
		return nil, errors.New("risk report has no overall_risk_score")
	}
	level, ok := normalizeLevel(raw.RiskLevel)
	if !ok {
		return nil, fmt.Errorf("invalid risk_level %q", raw.RiskLevel)
	}
	report := &domain.RiskReport{
		OverallRiskScore: clampScore(*raw.OverallRiskScore),
		RiskLevel:        level,
		KeyRiskFactors:   string(raw.KeyRiskFactors),
		Recommendations:  string(raw.Recommendations),
	}
	sections := []struct {
		name string
		raw  *rawSubAssessment
		dst  *domain.SubAssessment
	}{
		{"political_and_war_risk", raw.PoliticalAndWarRisk, &report.PoliticalAndWarRisk},
		{"labour_law_and_immigration", raw.LabourLawAndImmigration, &report.LabourLawAndImmigration},
		{"health_and_safety", raw.HealthAndSafety, &report.HealthAndSafety},
	}
	for _, s := range sections {
		sub, err := normalizeSub(s.name, s.raw)
		if err != nil {
			return nil, err
		}
		*s.dst = sub
	}
	return report, nil
}

func normalizeSub(name string, raw *rawSubAssessment) (domain.SubAssessment, error) {
	if raw == nil {
		return domain.SubAssessment{}, fmt.Errorf("risk report has no %s", name)
	}
	lvl := raw.RiskLevel
	if lvl == "" {
		lvl = raw.Level
	}
	level, ok := normalizeLevel(lvl)
	if !ok {
		return domain.SubAssessment{}, fmt.Errorf("invalid %s level %q", name, lvl)
	}
	notes := string(raw.Notes)
	if notes == "" {
		notes = string(raw.Summary)
	}
	return domain.SubAssessment{RiskLevel: level, Notes: notes}, nil
}

func normalizeLevel(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return domain.RiskLow, true
	case "medium", "moderate":
		return domain.RiskMedium, true
	case "high":
		return domain.RiskHigh, true
	}
	return "", false
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// stripCodeFence removes a ```json fence some models wrap around their answer
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
