// Package orchestrator dispatches a document to the seven analysis agents,
// absorbs individual agent failures, and merges everything into one
// OverallAssessment.
//
// Every Analyze call is stateless and independently reproducible from its
// inputs. Agents run in parallel over the same immutable snapshot; the
// orchestrator is the only place results are joined, and it waits for all
// agents before returning. A cancelled context is a hard failure, never a
// partially-populated assessment presented as complete.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/finsight-labs/analysis-core/pkg/agents"
	"github.com/finsight-labs/analysis-core/pkg/compliance"
	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

// ErrEmptyDocument rejects a call before any agent is dispatched: a
// document with no extractable text cannot be assessed.
var ErrEmptyDocument = errors.New("orchestrator: document has no extractable text")

// RiskLevel is the aggregated alerting signal. High is the single condition
// callers use to decide whether to raise a high-severity alert.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// OverallAssessment is the complete output of one analysis run. Immutable
// after return; owned by the caller.
type OverallAssessment struct {
	ID                string                   `json:"id"`
	DocumentID        string                   `json:"document_id"`
	AgentResults      []agents.Result          `json:"agent_results"`
	FraudAssessment   *fraud.Assessment        `json:"fraud_assessment"`
	ComplianceResults []compliance.CheckResult `json:"compliance_results"`
	OverallRisk       RiskLevel                `json:"overall_risk"`
	KeyFindings       []agents.Finding         `json:"key_findings"`
	Recommendations   []string                 `json:"recommendations"`
	GeneratedAt       time.Time                `json:"generated_at"`
	ExecutionTimeMS   int64                    `json:"execution_time_ms"`
}

// Analyzer wires the detectors, the evaluator, the extractor and the agent
// set. Construct once, reuse across calls; it holds no per-run state.
type Analyzer struct {
	detector   *fraud.Detector
	aggregator *fraud.Aggregator
	evaluator  *compliance.Evaluator
	extractor  *document.Extractor
	agentSet   []agents.Agent

	keyFindingsLimit int
	logger           *slog.Logger
	weights          fraud.Weights

	tracer         trace.Tracer
	analyses       metric.Int64Counter
	degradedAgents metric.Int64Counter
	durationMS     metric.Float64Histogram
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithAgents replaces the default agent set. Used by callers that need to
// inject an instrumented or failing agent.
func WithAgents(set []agents.Agent) Option {
	return func(a *Analyzer) { a.agentSet = set }
}

// WithThresholds replaces the default detector thresholds.
func WithThresholds(t fraud.Thresholds) Option {
	return func(a *Analyzer) { a.detector = fraud.NewDetector(t) }
}

// WithWeights replaces the default aggregator weights. Validation happens
// in New.
func WithWeights(w fraud.Weights) Option {
	return func(a *Analyzer) { a.aggregator = nil; a.weights = w }
}

// WithKeyFindingsLimit truncates keyFindings to n entries. Zero means no
// truncation; display-level trimming is a UI concern.
func WithKeyFindingsLimit(n int) Option {
	return func(a *Analyzer) { a.keyFindingsLimit = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// New builds an Analyzer. A weight set that does not sum to 1.0 is a
// configuration error and fails here, at startup, never per document.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		detector:  fraud.NewDetector(fraud.DefaultThresholds()),
		evaluator: compliance.NewEvaluator(),
		extractor: document.NewExtractor(),
		logger:    slog.Default().With("component", "orchestrator"),
		weights:   fraud.DefaultWeights(),
	}
	a.agentSet = DefaultAgents()
	for _, opt := range opts {
		opt(a)
	}

	if a.aggregator == nil {
		agg, err := fraud.NewAggregator(a.weights)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		a.aggregator = agg
	}

	meter := otel.Meter("finsight.orchestrator")
	a.tracer = otel.Tracer("finsight.orchestrator")
	a.analyses, _ = meter.Int64Counter("finsight.analyses",
		metric.WithDescription("Completed document analyses"))
	a.degradedAgents, _ = meter.Int64Counter("finsight.agents.degraded",
		metric.WithDescription("Agent runs substituted after an internal fault"))
	a.durationMS, _ = meter.Float64Histogram("finsight.analysis.duration_ms",
		metric.WithDescription("End-to-end analysis duration"))
	return a, nil
}

// DefaultAgents returns the closed seven-variant agent set in dispatch
// order.
func DefaultAgents() []agents.Agent {
	return []agents.Agent{
		agents.NewParser(),
		agents.NewValidator(),
		agents.NewAnalyzer(),
		agents.NewComplianceAgent(),
		agents.NewAnomaly(),
		agents.NewFraudAgent(),
		agents.NewRisk(),
	}
}

// Analyze runs the full assessment for one document.
func (a *Analyzer) Analyze(ctx context.Context, doc document.Document, figures *document.FinancialFigures) (*OverallAssessment, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "analyze")
	defer span.End()

	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%w (document %s)", ErrEmptyDocument, doc.ID)
	}
	if figures == nil {
		figures = &document.FinancialFigures{}
	}

	// Shared snapshot: extraction, fraud assessment and compliance results
	// are computed exactly once so the fraud agent's narrative and the risk
	// agent's summary cannot drift.
	extraction := a.extractor.Extract(doc.Text)
	subScores := a.detector.DetectAll(figures)
	assessment, err := a.aggregator.Aggregate(subScores)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: aggregate: %w", err)
	}
	complianceResults := a.evaluator.EvaluateAll(figures)

	in := agents.Input{
		Document:   doc,
		Figures:    figures,
		Extraction: extraction,
		Fraud:      assessment,
		Compliance: complianceResults,
	}

	results, err := a.dispatch(ctx, in)
	if err != nil {
		return nil, err
	}

	risk := deriveRisk(assessment.Severity, complianceResults)
	out := &OverallAssessment{
		ID:                uuid.NewString(),
		DocumentID:        doc.ID,
		AgentResults:      results,
		FraudAssessment:   assessment,
		ComplianceResults: complianceResults,
		OverallRisk:       risk,
		KeyFindings:       keyFindings(results, a.keyFindingsLimit),
		Recommendations:   recommendations(assessment, complianceResults),
		GeneratedAt:       time.Now().UTC(),
		ExecutionTimeMS:   time.Since(start).Milliseconds(),
	}

	a.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("risk", string(risk))))
	a.durationMS.Record(ctx, float64(out.ExecutionTimeMS))
	a.logger.InfoContext(ctx, "analysis complete",
		"document_id", doc.ID,
		"overall_risk", string(risk),
		"composite_score", assessment.CompositeScore,
		"agents", len(results))
	return out, nil
}

// dispatch fans the input out to every agent in parallel and waits for all
// of them. A panicking agent is substituted with a zero-confidence result
// carrying a single failure finding; the run still completes.
func (a *Analyzer) dispatch(ctx context.Context, in agents.Input) ([]agents.Result, error) {
	results := make([]agents.Result, len(a.agentSet))
	var wg sync.WaitGroup

	for i, agent := range a.agentSet {
		wg.Add(1)
		go func(i int, agent agents.Agent) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.degradedAgents.Add(ctx, 1, metric.WithAttributes(
						attribute.String("agent", string(agent.Type()))))
					a.logger.WarnContext(ctx, "agent failed, substituting degraded result",
						"agent", string(agent.Type()), "panic", fmt.Sprint(r))
					results[i] = agents.Result{
						AgentType:  agent.Type(),
						Confidence: 0,
						Findings: []agents.Finding{agents.NewFinding(
							fmt.Sprintf("agent %s failed internally and produced no findings", agent.Type()), 0)},
					}
				}
			}()
			results[i] = agent.Run(ctx, in)
		}(i, agent)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		// Do not hand back partial results as if they were complete.
		<-done
		return nil, fmt.Errorf("orchestrator: analysis aborted: %w", ctx.Err())
	}
}

// deriveRisk applies the OR-based escalation: fraud severity and compliance
// verdicts are both first-class, neither suppresses the other.
func deriveRisk(severity fraud.Severity, checks []compliance.CheckResult) RiskLevel {
	anyFailed, anyWarning := false, false
	for _, c := range checks {
		switch c.Result {
		case compliance.ResultFailed:
			anyFailed = true
		case compliance.ResultWarning:
			anyWarning = true
		}
	}
	if severity == fraud.SeverityHigh || severity == fraud.SeverityCritical || anyFailed {
		return RiskHigh
	}
	if severity == fraud.SeverityMedium || anyWarning {
		return RiskMedium
	}
	return RiskLow
}

// keyFindings merges all agents' findings, deduplicates by normalized text,
// sorts by confidence descending (stable on first-seen order), and applies
// the caller's limit (0 = no truncation).
func keyFindings(results []agents.Result, limit int) []agents.Finding {
	var merged []agents.Finding
	seen := make(map[string]bool)
	for _, r := range results {
		for _, f := range r.Findings {
			key := normalizeFinding(f.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, f)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ConfidenceScore > merged[j].ConfidenceScore
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func normalizeFinding(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// recommendations mirrors the follow-up actions the surrounding product
// surfaces next to an assessment.
func recommendations(assessment *fraud.Assessment, checks []compliance.CheckResult) []string {
	var recs []string
	if len(assessment.Triggered()) > 0 {
		recs = append(recs, "Conduct a detailed forensic audit of the flagged transactions")
	}
	for _, c := range checks {
		if c.Result == compliance.ResultFailed {
			recs = append(recs, "Address compliance failures with the regulatory team")
			break
		}
	}
	if assessment.Severity == fraud.SeverityMedium {
		recs = append(recs, "Enhanced monitoring recommended; flag for manual review")
	}
	if len(recs) == 0 {
		recs = append(recs, "Continue monitoring; no critical issues detected")
	}
	return recs
}
