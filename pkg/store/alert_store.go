package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-labs/analysis-core/pkg/orchestrator"
)

// Alert is a high-severity notification row. The core guarantees that
// overallRisk == high is the single condition for raising one; dispatch
// policy beyond that lives with the caller.
type Alert struct {
	ID          string    `json:"id"`
	AnalysisID  string    `json:"analysis_id"`
	DocumentID  string    `json:"document_id,omitempty"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TriggeredAt time.Time `json:"triggered_at"`
	Status      string    `json:"status"`
}

// AlertStore persists alerts.
type AlertStore struct {
	db *sql.DB
}

// NewAlertStore creates the store and runs its migration.
func NewAlertStore(db *sql.DB) (*AlertStore, error) {
	s := &AlertStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate alerts: %w", err)
	}
	return s, nil
}

func (s *AlertStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		analysis_id TEXT NOT NULL,
		document_id TEXT,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		triggered_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'unread'
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// RaiseFromAssessment creates an alert for a high-risk assessment and
// returns it. Assessments below high risk raise nothing and return nil.
func (s *AlertStore) RaiseFromAssessment(ctx context.Context, a *orchestrator.OverallAssessment) (*Alert, error) {
	if a.OverallRisk != orchestrator.RiskHigh {
		return nil, nil
	}
	severity := "high"
	if a.FraudAssessment.CompositeScore >= 80 {
		severity = "critical"
	}
	alert := &Alert{
		ID:         uuid.NewString(),
		AnalysisID: a.ID,
		DocumentID: a.DocumentID,
		Severity:   severity,
		Title:      "High risk assessment",
		Description: fmt.Sprintf("composite fraud score %.1f (%s), %d triggered pattern(s)",
			a.FraudAssessment.CompositeScore, a.FraudAssessment.Severity,
			len(a.FraudAssessment.Triggered())),
		TriggeredAt: time.Now().UTC(),
		Status:      "unread",
	}
	if err := s.insert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *AlertStore) insert(ctx context.Context, a *Alert) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, analysis_id, document_id, severity, title, description, triggered_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AnalysisID, a.DocumentID, a.Severity, a.Title, a.Description,
		a.TriggeredAt.Format(time.RFC3339Nano), a.Status)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// List returns the most recent alerts, optionally filtered by status.
func (s *AlertStore) List(ctx context.Context, status string, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, analysis_id, document_id, severity, title, description, triggered_at, status
	          FROM alerts ORDER BY triggered_at DESC LIMIT ?`
	args := []any{limit}
	if status != "" {
		query = `SELECT id, analysis_id, document_id, severity, title, description, triggered_at, status
		         FROM alerts WHERE status = ? ORDER BY triggered_at DESC LIMIT ?`
		args = []any{status, limit}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Alert
	for rows.Next() {
		var a Alert
		var triggered string
		if err := rows.Scan(&a.ID, &a.AnalysisID, &a.DocumentID, &a.Severity, &a.Title, &a.Description, &triggered, &a.Status); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, triggered); err == nil {
			a.TriggeredAt = ts
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Acknowledge marks an alert as read.
func (s *AlertStore) Acknowledge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET status = 'read' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge alert %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
