package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

// AuditRepository persists triage decision and judge rationale records
// to Postgres. It implements triage.AuditSink; callers treat writes as
// best-effort and never block a decision on them.
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a Postgres-backed audit sink.
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// LogDecision inserts one decision record.
func (r *AuditRepository) LogDecision(ctx context.Context, rec triage.DecisionRecord) error {
	thresholds, err := json.Marshal(rec.PolicyThresholds)
	if err != nil {
		return fmt.Errorf("failed to marshal thresholds: %w", err)
	}

	query := `
		INSERT INTO triage_decisions (
			id, url, p_malicious, policy_thresholds,
			policy_decision, final_decision, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		uuid.New(),
		rec.URL,
		rec.PMalicious,
		thresholds,
		string(rec.PolicyDecision),
		string(rec.FinalDecision),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision record: %w", err)
	}
	return nil
}

// LogJudge inserts one judge rationale record.
func (r *AuditRepository) LogJudge(ctx context.Context, rec triage.JudgeRecord) error {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `
		INSERT INTO judge_rationales (
			id, url, verdict, rationale, judge_score, features, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		uuid.New(),
		rec.URL,
		string(rec.Verdict),
		rec.Rationale,
		rec.JudgeScore,
		features,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert judge record: %w", err)
	}
	return nil
}
