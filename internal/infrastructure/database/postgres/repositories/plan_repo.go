package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/postgres"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

const planColumns = `id, title, description, time_types, questions, discarded, creator_id,
	creator_name, team_name, participant_count, created_at, updated_at`

type postgresPlanRepo struct {
	baseRepo
}

// NewPostgresPlanRepo returns a followup.PlanRepository backed by PostgreSQL.
func NewPostgresPlanRepo(conn *postgres.Connection, log logging.Logger) followup.PlanRepository {
	return &postgresPlanRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresPlanRepo) Create(ctx context.Context, p *followup.Plan) error {
	timeTypes, err := json.Marshal(p.TimeTypes)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode plan checkpoints")
	}
	questions, err := json.Marshal(nonNilQuestions(p.Questions))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode plan questions")
	}

	query := `
		INSERT INTO plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.executor().ExecContext(ctx, query,
		p.ID, p.Title, p.Description, timeTypes, questions, p.Discarded, p.CreatorID,
		p.CreatorName, p.TeamName, p.ParticipantCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return errors.Wrap(err, errors.ErrCodeConflict, "plan already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create plan")
	}
	return nil
}

func (r *postgresPlanRepo) GetByID(ctx context.Context, id string) (*followup.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(r.executor().QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get plan")
	}
	return p, nil
}

func (r *postgresPlanRepo) ListByIDs(ctx context.Context, ids []string) (map[string]*followup.Plan, error) {
	out := make(map[string]*followup.Plan, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + planColumns + ` FROM plans WHERE id IN (` + inPlaceholders(1, len(ids)) + `)`

	plans, err := r.queryPlans(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		out[p.ID] = p
	}
	return out, nil
}

func (r *postgresPlanRepo) ListByCreator(ctx context.Context, creatorID string) ([]*followup.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE creator_id = $1 ORDER BY created_at DESC, id`
	return r.queryPlans(ctx, query, creatorID)
}

func (r *postgresPlanRepo) Update(ctx context.Context, p *followup.Plan) error {
	query := `UPDATE plans SET discarded = $2, updated_at = $3 WHERE id = $1`
	res, err := r.executor().ExecContext(ctx, query, p.ID, p.Discarded, p.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update plan")
	}
	if rowsAffected(res) == 0 {
		return errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(p.ID)
	}
	return nil
}

func (r *postgresPlanRepo) IncrementParticipants(ctx context.Context, id string, delta int) error {
	query := `UPDATE plans SET participant_count = participant_count + $2 WHERE id = $1`
	res, err := r.executor().ExecContext(ctx, query, id, delta)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update participant count")
	}
	if rowsAffected(res) == 0 {
		return errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(id)
	}
	return nil
}

func (r *postgresPlanRepo) queryPlans(ctx context.Context, query string, args ...interface{}) ([]*followup.Plan, error) {
	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list plans")
	}
	defer rows.Close()

	var plans []*followup.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan plan")
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate plans")
	}
	return plans, nil
}

func scanPlan(row scanner) (*followup.Plan, error) {
	var (
		p         followup.Plan
		timeTypes []byte
		questions []byte
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &timeTypes, &questions, &p.Discarded, &p.CreatorID,
		&p.CreatorName, &p.TeamName, &p.ParticipantCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(timeTypes) > 0 {
		if err := json.Unmarshal(timeTypes, &p.TimeTypes); err != nil {
			return nil, err
		}
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &p.Questions); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func nonNilQuestions(q []followup.Question) []followup.Question {
	if q == nil {
		return []followup.Question{}
	}
	return q
}
