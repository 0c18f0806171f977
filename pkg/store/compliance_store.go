package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finsight-labs/analysis-core/pkg/compliance"
)

// ComplianceRow is one persisted rule verdict, keyed to the analysis that
// produced it.
type ComplianceRow struct {
	ID             int64     `json:"id"`
	AnalysisID     string    `json:"analysis_id"`
	DocumentID     string    `json:"document_id,omitempty"`
	Standard       string    `json:"standard"`
	CheckName      string    `json:"check_name"`
	Result         string    `json:"result"`
	Details        string    `json:"details"`
	Recommendation string    `json:"recommendation,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// ComplianceStore persists rule verdicts one row per check.
type ComplianceStore struct {
	db *sql.DB
}

// NewComplianceStore creates the store and runs its migration.
func NewComplianceStore(db *sql.DB) (*ComplianceStore, error) {
	s := &ComplianceStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate compliance checks: %w", err)
	}
	return s, nil
}

func (s *ComplianceStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS compliance_checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		document_id TEXT,
		standard TEXT NOT NULL,
		check_name TEXT NOT NULL,
		result TEXT NOT NULL,
		details TEXT,
		recommendation TEXT,
		checked_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// SaveResults stores every check result of one analysis.
func (s *ComplianceStore) SaveResults(ctx context.Context, analysisID, documentID string, results []compliance.CheckResult) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range results {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO compliance_checks (analysis_id, document_id, standard, check_name, result, details, recommendation, checked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			analysisID, documentID, string(r.Standard), r.CheckName, string(r.Result),
			r.Details, r.Recommendation, now)
		if err != nil {
			return fmt.Errorf("insert compliance check %q: %w", r.CheckName, err)
		}
	}
	return nil
}

// Filter narrows a List call. Zero values mean no filtering.
type Filter struct {
	Standard string
	Result   string
	Limit    int
}

// List returns compliance rows, newest first.
func (s *ComplianceStore) List(ctx context.Context, f Filter) ([]*ComplianceRow, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query := `SELECT id, analysis_id, document_id, standard, check_name, result, details, recommendation, checked_at
	          FROM compliance_checks WHERE 1=1`
	var args []any
	if f.Standard != "" {
		query += ` AND standard = ?`
		args = append(args, f.Standard)
	}
	if f.Result != "" {
		query += ` AND result = ?`
		args = append(args, f.Result)
	}
	query += ` ORDER BY checked_at DESC, id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list compliance checks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*ComplianceRow
	for rows.Next() {
		var r ComplianceRow
		var checked string
		var recommendation sql.NullString
		if err := rows.Scan(&r.ID, &r.AnalysisID, &r.DocumentID, &r.Standard, &r.CheckName, &r.Result, &r.Details, &recommendation, &checked); err != nil {
			return nil, err
		}
		r.Recommendation = recommendation.String
		if ts, err := time.Parse(time.RFC3339Nano, checked); err == nil {
			r.CheckedAt = ts
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
