package domain

// Risk levels reported by the assessment provider
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// SubAssessment is one category of a risk report
type SubAssessment struct {
	RiskLevel string `json:"risk_level"`
	Notes     string `json:"notes"`
}

// RiskReport is computed per analyze-risk call and never stored
type RiskReport struct {
	TripID                  uint          `json:"trip_id"`
	OverallRiskScore        int           `json:"overall_risk_score"` // 0-100
	RiskLevel               string        `json:"risk_level"`
	PoliticalAndWarRisk     SubAssessment `json:"political_and_war_risk"`
	LabourLawAndImmigration SubAssessment `json:"labour_law_and_immigration"`
	HealthAndSafety         SubAssessment `json:"health_and_safety"`
	KeyRiskFactors          string        `json:"key_risk_factors"`
	Recommendations         string        `json:"recommendations"`
}
