package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ScanRepoPG struct {
	pool *pgxpool.Pool
}

func NewScanRepoPG(pool *pgxpool.Pool) *ScanRepoPG {
	return &ScanRepoPG{pool: pool}
}

func (r *ScanRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const scanCols = `id, patient_id, doctor_id, modality, image_ref, description, uploaded_at,
	analyzed, analyzed_at, abnormalities, classification, confidence, risk_level, explanation`

func scanRow(row pgx.Row) (*Scan, error) {
	var s Scan
	var abnormalities []byte
	err := row.Scan(
		&s.ID, &s.PatientID, &s.DoctorID, &s.Modality, &s.ImageRef, &s.Description, &s.UploadedAt,
		&s.Analyzed, &s.AnalyzedAt, &abnormalities, &s.Classification, &s.Confidence, &s.RiskLevel, &s.Explanation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(abnormalities) > 0 {
		if err := json.Unmarshal(abnormalities, &s.Abnormalities); err != nil {
			return nil, fmt.Errorf("decode abnormalities for scan %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func (r *ScanRepoPG) Create(ctx context.Context, s *Scan) error {
	q := `INSERT INTO scans (id, patient_id, doctor_id, modality, image_ref, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at`
	return r.conn(ctx).QueryRow(ctx, q,
		s.ID, s.PatientID, s.DoctorID, s.Modality, s.ImageRef, s.Description,
	).Scan(&s.UploadedAt)
}

func (r *ScanRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Scan, error) {
	q := fmt.Sprintf("SELECT %s FROM scans WHERE id = $1", scanCols)
	return scanRow(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *ScanRepoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Scan, error) {
	q := fmt.Sprintf("SELECT %s FROM scans WHERE patient_id = $1 ORDER BY uploaded_at DESC LIMIT 1", scanCols)
	return scanRow(r.conn(ctx).QueryRow(ctx, q, patientID))
}

func (r *ScanRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Scan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM scans WHERE patient_id = $1", patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM scans WHERE patient_id = $1 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3", scanCols)
	rows, err := r.conn(ctx).Query(ctx, q, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *ScanRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Scan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM scans").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM scans ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2", scanCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Scan, int, error) {
	var items []*Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// SetAnalysis writes every AI field in one statement so a scan is never
// half-analyzed.
func (r *ScanRepoPG) SetAnalysis(ctx context.Context, id uuid.UUID, a Analysis) error {
	if a.Abnormalities == nil {
		a.Abnormalities = []ai.Abnormality{}
	}
	raw, err := json.Marshal(a.Abnormalities)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE scans SET
			analyzed = TRUE,
			analyzed_at = NOW(),
			abnormalities = $1,
			classification = $2,
			confidence = $3,
			risk_level = $4,
			explanation = $5
		WHERE id = $6`,
		raw, a.Classification, a.Confidence, a.RiskLevel, a.Explanation, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ScanRepoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM scans").Scan(&total)
	return total, err
}

func (r *ScanRepoPG) CountAnalyzedSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM scans WHERE analyzed_at >= $1", since).Scan(&total)
	return total, err
}
