package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finsight-labs/analysis-core/pkg/orchestrator"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// AnalysisStore persists OverallAssessments. Scalar columns carry the
// fields the dashboard filters on; the full assessment rides along as JSON.
type AnalysisStore struct {
	db *sql.DB
}

// NewAnalysisStore creates the store and runs its migration.
func NewAnalysisStore(db *sql.DB) (*AnalysisStore, error) {
	s := &AnalysisStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate analyses: %w", err)
	}
	return s, nil
}

func (s *AnalysisStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		document_id TEXT,
		overall_risk TEXT NOT NULL,
		composite_score REAL NOT NULL,
		severity TEXT NOT NULL,
		payload JSON NOT NULL,
		created_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Save inserts one assessment.
func (s *AnalysisStore) Save(ctx context.Context, a *orchestrator.OverallAssessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, document_id, overall_risk, composite_score, severity, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DocumentID, string(a.OverallRisk),
		a.FraudAssessment.CompositeScore, string(a.FraudAssessment.Severity),
		string(payload), a.GeneratedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get loads one assessment by ID.
func (s *AnalysisStore) Get(ctx context.Context, id string) (*orchestrator.OverallAssessment, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analyses WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis %s: %w", id, err)
	}
	var a orchestrator.OverallAssessment
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

// ListByRisk returns the most recent assessments at the given risk level.
// An empty risk lists everything.
func (s *AnalysisStore) ListByRisk(ctx context.Context, risk orchestrator.RiskLevel, limit int) ([]*orchestrator.OverallAssessment, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT payload FROM analyses ORDER BY created_at DESC LIMIT ?`
	args := []any{limit}
	if risk != "" {
		query = `SELECT payload FROM analyses WHERE overall_risk = ? ORDER BY created_at DESC LIMIT ?`
		args = []any{string(risk), limit}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*orchestrator.OverallAssessment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a orchestrator.OverallAssessment
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode analysis row: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
