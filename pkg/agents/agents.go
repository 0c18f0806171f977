// Package agents defines the closed set of seven analysis agents and the
// uniform result contract they all return.
//
// Agents are independent, side-effect-free computations over the same
// immutable input snapshot. They never fail hard: missing or partial data
// degrades confidence and surfaces as findings, never as an error.
package agents

import (
	"context"
	"time"

	"github.com/finsight-labs/analysis-core/pkg/compliance"
	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

// Type identifies one agent variant. The set is closed: adding a variant
// means extending this enum and the orchestrator dispatch table.
type Type string

const (
	TypeParser     Type = "parser"
	TypeValidator  Type = "validator"
	TypeAnalyzer   Type = "analyzer"
	TypeCompliance Type = "compliance"
	TypeAnomaly    Type = "anomaly"
	TypeFraud      Type = "fraud"
	TypeRisk       Type = "risk"
)

// Types lists all seven agent types in dispatch order.
func Types() []Type {
	return []Type{
		TypeParser, TypeValidator, TypeAnalyzer, TypeCompliance,
		TypeAnomaly, TypeFraud, TypeRisk,
	}
}

// ConfidenceTier buckets a finding's confidence score. Low-tier findings
// require manual verification.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"   // >= 90
	TierMedium ConfidenceTier = "medium" // 70-89
	TierLow    ConfidenceTier = "low"    // < 70
)

// TierFor maps a confidence score (0-100) to its tier. The tier is a pure
// function of the score; NewFinding is the only constructor so the two can
// never disagree.
func TierFor(score float64) ConfidenceTier {
	switch {
	case score >= 90:
		return TierHigh
	case score >= 70:
		return TierMedium
	default:
		return TierLow
	}
}

// Finding is one observation an agent made about the document.
type Finding struct {
	Text            string         `json:"text"`
	ConfidenceScore float64        `json:"confidence_score"`
	Tier            ConfidenceTier `json:"confidence_tier"`
}

// NewFinding builds a Finding with its tier derived from the score. Scores
// are clamped to [0,100].
func NewFinding(text string, confidenceScore float64) Finding {
	if confidenceScore < 0 {
		confidenceScore = 0
	}
	if confidenceScore > 100 {
		confidenceScore = 100
	}
	return Finding{Text: text, ConfidenceScore: confidenceScore, Tier: TierFor(confidenceScore)}
}

// Result is the uniform agent output. Findings may be empty (nothing
// notable); AgentType and Confidence are always set.
type Result struct {
	AgentType        Type      `json:"agent_type"`
	Findings         []Finding `json:"findings"`
	Confidence       float64   `json:"confidence"` // 0.0-1.0
	ProcessingTimeMS int64     `json:"processing_time_ms"`
}

// Input is the immutable snapshot every agent receives. Fraud and
// Compliance are computed once by the orchestrator and shared, so the
// fraud agent's narrative and the risk agent's summary can never drift.
type Input struct {
	Document   document.Document
	Figures    *document.FinancialFigures
	Extraction *document.Extraction
	Fraud      *fraud.Assessment
	Compliance []compliance.CheckResult
}

// Agent is one analysis capability. Run must always return a well-formed
// Result, degrading via findings and confidence instead of failing.
type Agent interface {
	Type() Type
	Run(ctx context.Context, in Input) Result
}

// timed wraps an agent body and stamps the processing time.
func timed(t Type, body func() ([]Finding, float64)) Result {
	start := time.Now()
	findings, confidence := body()
	return Result{
		AgentType:        t,
		Findings:         findings,
		Confidence:       confidence,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
}
