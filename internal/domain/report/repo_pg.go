package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ReportRepoPG struct {
	pool *pgxpool.Pool
}

func NewReportRepoPG(pool *pgxpool.Pool) *ReportRepoPG {
	return &ReportRepoPG{pool: pool}
}

func (r *ReportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reportCols = `id, patient_id, scan_id, doctor_id, report_type, ai_content,
	doctor_notes, diagnosis, recommended_treatment, medicine_suggestions,
	status, generated_at, validated_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rp Report
	err := row.Scan(
		&rp.ID, &rp.PatientID, &rp.ScanID, &rp.DoctorID, &rp.ReportType, &rp.AIContent,
		&rp.DoctorNotes, &rp.Diagnosis, &rp.RecommendedTreatment, &rp.MedicineSuggestions,
		&rp.Status, &rp.GeneratedAt, &rp.ValidatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return &rp, err
}

func (r *ReportRepoPG) Create(ctx context.Context, rp *Report) error {
	q := `INSERT INTO reports (id, patient_id, scan_id, doctor_id, report_type, ai_content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING generated_at`
	return r.conn(ctx).QueryRow(ctx, q,
		rp.ID, rp.PatientID, rp.ScanID, rp.DoctorID, rp.ReportType, rp.AIContent, rp.Status,
	).Scan(&rp.GeneratedAt)
}

func (r *ReportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	q := fmt.Sprintf("SELECT %s FROM reports WHERE id = $1", reportCols)
	return scanReport(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *ReportRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	return r.list(ctx, "WHERE patient_id = $1", []interface{}{patientID}, limit, offset)
}

func (r *ReportRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *ReportRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Report, int, error) {
	return r.list(ctx, "WHERE status = $1", []interface{}{status}, limit, offset)
}

func (r *ReportRepoPG) list(ctx context.Context, whereClause string, args []interface{}, limit, offset int) ([]*Report, int, error) {
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM reports %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	idx := len(args) + 1
	q := fmt.Sprintf("SELECT %s FROM reports %s ORDER BY generated_at DESC LIMIT $%d OFFSET $%d",
		reportCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rp)
	}
	return items, total, rows.Err()
}

func (r *ReportRepoPG) SetValidation(ctx context.Context, id uuid.UUID, v Validation) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE reports SET
			doctor_id = $1,
			status = $2,
			doctor_notes = $3,
			diagnosis = $4,
			recommended_treatment = $5,
			medicine_suggestions = $6,
			validated_at = $7
		WHERE id = $8 AND status = 'pending'`,
		v.DoctorID, v.Status, v.DoctorNotes, v.Diagnosis, v.RecommendedTreatment,
		v.MedicineSuggestions, v.ValidatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// distinguish a missing report from one already decided
		var status string
		err := r.conn(ctx).QueryRow(ctx, "SELECT status FROM reports WHERE id = $1", id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: report already %s", apperr.ErrInvalidState, status)
	}
	return nil
}

func (r *ReportRepoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM reports").Scan(&total)
	return total, err
}

func (r *ReportRepoPG) CountByStatus(ctx context.Context, status string) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM reports WHERE status = $1", status).Scan(&total)
	return total, err
}
