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

const submissionColumns = `id, patient_id, plan_id, time_type, occurrence, answers, created_at`

type postgresSubmissionRepo struct {
	baseRepo
}

// NewPostgresSubmissionRepo returns a followup.SubmissionRepository backed by PostgreSQL.
func NewPostgresSubmissionRepo(conn *postgres.Connection, log logging.Logger) followup.SubmissionRepository {
	return &postgresSubmissionRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresSubmissionRepo) Create(ctx context.Context, s *followup.Submission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode answers")
	}

	query := `INSERT INTO submissions (` + submissionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.executor().ExecContext(ctx, query,
		s.ID, s.PatientID, s.PlanID, string(s.CheckpointID), s.Occurrence, answers, s.CreatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return errors.Wrap(err, errors.ErrCodeSubmissionDuplicate, "this checkpoint has already been filled")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create submission")
	}
	return nil
}

func (r *postgresSubmissionRepo) GetByID(ctx context.Context, id string) (*followup.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s, err := scanSubmission(r.executor().QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeSubmissionNotFound, "submission not found").WithDetail(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get submission")
	}
	return s, nil
}

func (r *postgresSubmissionRepo) ListByPatient(ctx context.Context, patientID string) ([]*followup.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE patient_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, patientID)
}

func (r *postgresSubmissionRepo) ListByPlan(ctx context.Context, planID string) ([]*followup.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE plan_id = $1 ORDER BY created_at DESC, id`
	return r.query(ctx, query, planID)
}

func (r *postgresSubmissionRepo) query(ctx context.Context, query string, args ...interface{}) ([]*followup.Submission, error) {
	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list submissions")
	}
	defer rows.Close()

	var out []*followup.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan submission")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate submissions")
	}
	return out, nil
}

func scanSubmission(row scanner) (*followup.Submission, error) {
	var (
		s          followup.Submission
		checkpoint string
		answers    []byte
	)
	if err := row.Scan(&s.ID, &s.PatientID, &s.PlanID, &checkpoint, &s.Occurrence, &answers, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.CheckpointID = followup.CheckpointID(checkpoint)
	s.Answers = map[string]interface{}{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
