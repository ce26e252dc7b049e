package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the categorical bucket of a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskScore is a 0-100 score where higher means lower risk.
type RiskScore struct {
	Value int       `json:"value"`
	Level RiskLevel `json:"level"`
}

// LevelForScore maps a score onto its risk level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	case score >= 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// ScoreAdjustment explains one change to the running risk score.
type ScoreAdjustment struct {
	QuestionID string   `json:"question_id"`
	Category   Category `json:"category"`
	Reason     string   `json:"reason"`
	Delta      int      `json:"delta"`
}

// AnalysisReport is the final output of one pipeline run.
type AnalysisReport struct {
	ID                uuid.UUID         `json:"id"`
	TenantID          uuid.UUID         `json:"tenant_id"`
	UserID            string            `json:"user_id"`
	AssessmentID      *uuid.UUID        `json:"assessment_id,omitempty"`
	AssessmentType    string            `json:"assessment_type"`
	Answers           []AnalysisAnswer  `json:"answers"`
	OverallAnalysis   string            `json:"overall_analysis"`
	RiskFactors       []string          `json:"risk_factors"`
	Recommendations   []string          `json:"recommendations"`
	DocumentsAnalyzed int               `json:"documents_analyzed"`
	Documents         []DocumentSummary `json:"documents"`
	RiskScore         RiskScore         `json:"risk_score"`
	ScoreBreakdown    []ScoreAdjustment `json:"score_breakdown"`
	AIProvider        string            `json:"ai_provider"`
	Model             string            `json:"model"`
	Notes             []string          `json:"notes,omitempty"`
	Demo              bool              `json:"demo"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ReportSummary is the list view of a stored report.
type ReportSummary struct {
	ID                uuid.UUID  `json:"id"`
	AssessmentID      *uuid.UUID `json:"assessment_id,omitempty"`
	AssessmentType    string     `json:"assessment_type"`
	UserID            string     `json:"user_id"`
	RiskScore         RiskScore  `json:"risk_score"`
	DocumentsAnalyzed int        `json:"documents_analyzed"`
	AIProvider        string     `json:"ai_provider"`
	CreatedAt         time.Time  `json:"created_at"`
}
