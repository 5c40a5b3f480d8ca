package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/postgres"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

const (
	bindingColumns = `id, patient_id, plan_id, admission_number, team_name, doctor_id,
	surgery_date, admission_date, discharge_date, is_current, created_at, updated_at`

	constraintPatientPlan = "bindings_patient_plan_key"
	constraintOneCurrent  = "bindings_one_current_per_patient"
)

type postgresBindingRepo struct {
	baseRepo
}

// NewPostgresBindingRepo returns a followup.BindingRepository backed by PostgreSQL.
func NewPostgresBindingRepo(conn *postgres.Connection, log logging.Logger) followup.BindingRepository {
	return &postgresBindingRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresBindingRepo) Create(ctx context.Context, b *followup.Binding, autoCurrent bool) error {
	err := r.insert(ctx, b, autoCurrent)
	if err == nil {
		return nil
	}

	constraint, ok := uniqueViolation(err)
	switch {
	case ok && constraint == constraintOneCurrent && autoCurrent:
		// Another binding became current concurrently; keep that one.
		r.log.Debug("lost auto-current race, inserting as non-current",
			logging.String("patient_id", b.PatientID), logging.String("binding_id", b.ID))
		if err = r.insert(ctx, b, false); err == nil {
			return nil
		}
		if _, dup := uniqueViolation(err); dup {
			return errors.Wrap(err, errors.ErrCodeBindingExists, "plan already bound")
		}
	case ok:
		return errors.Wrap(err, errors.ErrCodeBindingExists, "plan already bound")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create binding")
}

func (r *postgresBindingRepo) insert(ctx context.Context, b *followup.Binding, autoCurrent bool) error {
	query := `
		INSERT INTO bindings (` + bindingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			CASE WHEN $10::boolean
				THEN NOT EXISTS (SELECT 1 FROM bindings WHERE patient_id = $2 AND is_current)
				ELSE FALSE END,
			$11, $11
		)
		RETURNING is_current
	`
	return r.executor().QueryRowContext(ctx, query,
		b.ID, b.PatientID, b.PlanID, b.AdmissionNumber, b.TeamName, b.DoctorID,
		b.SurgeryDate, b.AdmissionDate, b.DischargeDate, autoCurrent, b.CreatedAt,
	).Scan(&b.IsCurrent)
}

func (r *postgresBindingRepo) GetByID(ctx context.Context, id string) (*followup.Binding, error) {
	query := `SELECT ` + bindingColumns + ` FROM bindings WHERE id = $1`
	return r.getOne(ctx, id, query, id)
}

func (r *postgresBindingRepo) GetByPatientAndPlan(ctx context.Context, patientID, planID string) (*followup.Binding, error) {
	query := `SELECT ` + bindingColumns + ` FROM bindings WHERE patient_id = $1 AND plan_id = $2`
	return r.getOne(ctx, planID, query, patientID, planID)
}

func (r *postgresBindingRepo) getOne(ctx context.Context, ref, query string, args ...interface{}) (*followup.Binding, error) {
	b, err := scanBinding(r.executor().QueryRowContext(ctx, query, args...))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(ref)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get binding")
	}
	return b, nil
}

func (r *postgresBindingRepo) ListByPatient(ctx context.Context, patientID string) ([]*followup.Binding, error) {
	query := `SELECT ` + bindingColumns + ` FROM bindings WHERE patient_id = $1 ORDER BY created_at, id`
	rows, err := r.executor().QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list bindings")
	}
	defer rows.Close()

	var out []*followup.Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan binding")
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate bindings")
	}
	return out, nil
}

func (r *postgresBindingRepo) Update(ctx context.Context, b *followup.Binding) error {
	query := `
		UPDATE bindings SET
			admission_number = $2, team_name = $3, doctor_id = $4,
			surgery_date = $5, admission_date = $6, discharge_date = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.executor().ExecContext(ctx, query,
		b.ID, b.AdmissionNumber, b.TeamName, b.DoctorID,
		b.SurgeryDate, b.AdmissionDate, b.DischargeDate, b.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update binding")
	}
	if rowsAffected(res) == 0 {
		return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(b.ID)
	}
	return nil
}

func (r *postgresBindingRepo) SetCurrent(ctx context.Context, patientID, bindingID string) error {
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM bindings WHERE id = $1 AND patient_id = $2 FOR UPDATE`,
			bindingID, patientID,
		).Scan(&one)
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(bindingID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE bindings SET is_current = FALSE, updated_at = NOW()
			 WHERE patient_id = $1 AND is_current AND id <> $2`,
			patientID, bindingID,
		); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE bindings SET is_current = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_current`,
			bindingID,
		)
		return err
	})
	return r.mapCurrentErr(err, "failed to set current binding")
}

func (r *postgresBindingRepo) UnsetCurrent(ctx context.Context, patientID, bindingID string) error {
	var one int
	err := r.executor().QueryRowContext(ctx, `
		UPDATE bindings
		SET is_current = FALSE,
		    updated_at = CASE WHEN is_current THEN NOW() ELSE updated_at END
		WHERE id = $1 AND patient_id = $2
		RETURNING 1
	`, bindingID, patientID).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(bindingID)
	}
	return r.mapCurrentErr(err, "failed to unset current binding")
}

func (r *postgresBindingRepo) mapCurrentErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if _, ok := uniqueViolation(err); ok {
		return errors.Wrap(err, errors.ErrCodeCurrentConflict, "another current plan was selected concurrently")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, msg)
}

func scanBinding(row scanner) (*followup.Binding, error) {
	var b followup.Binding
	err := row.Scan(
		&b.ID, &b.PatientID, &b.PlanID, &b.AdmissionNumber, &b.TeamName, &b.DoctorID,
		&b.SurgeryDate, &b.AdmissionDate, &b.DischargeDate, &b.IsCurrent, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
