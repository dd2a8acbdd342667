package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aulaflow/agenda-api/internal/models"
)

// ClassLogRepository provides persistence for attendance/content records.
type ClassLogRepository struct {
	db *sqlx.DB
}

// NewClassLogRepository creates a new class log repository.
func NewClassLogRepository(db *sqlx.DB) *ClassLogRepository {
	return &ClassLogRepository{db: db}
}

const classLogColumns = `id, tenant_id, teacher_id, student_id, booking_id, reschedule_id, presence, subtype, content_covered, class_date, created_at`

// ListByTeacherBetween returns a teacher's logs inside a closed date range,
// the shape reconciliation windows query with.
func (r *ClassLogRepository) ListByTeacherBetween(ctx context.Context, tenantID, teacherID string, from, to time.Time) ([]models.ClassLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_logs WHERE tenant_id = $1 AND teacher_id = $2 AND class_date >= $3 AND class_date <= $4 ORDER BY class_date ASC`, classLogColumns)
	var logs []models.ClassLog
	if err := r.db.SelectContext(ctx, &logs, query, tenantID, teacherID, models.DateOnly(from), models.DateOnly(to)); err != nil {
		return nil, fmt.Errorf("list class logs by teacher: %w", err)
	}
	return logs, nil
}

// ExistsForBookingOnDate reports whether the booking already has a log for
// the exact class date. Duplicate logging is prevented by this
// query-before-insert convention, not by a database constraint.
func (r *ClassLogRepository) ExistsForBookingOnDate(ctx context.Context, bookingID string, date time.Time) (bool, error) {
	const query = `SELECT COUNT(*) FROM class_logs WHERE booking_id = $1 AND class_date = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, bookingID, models.DateOnly(date)); err != nil {
		return false, fmt.Errorf("check class log for booking: %w", err)
	}
	return count > 0, nil
}

// ExistsForReschedule reports whether the makeup was already logged.
func (r *ClassLogRepository) ExistsForReschedule(ctx context.Context, rescheduleID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM class_logs WHERE reschedule_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, rescheduleID); err != nil {
		return false, fmt.Errorf("check class log for reschedule: %w", err)
	}
	return count > 0, nil
}

// BulkInsert stores a batch of class logs within one transaction.
func (r *ClassLogRepository) BulkInsert(ctx context.Context, logs []models.ClassLog) error {
	if len(logs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class log insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range logs {
		payload := logs[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.ClassDate = models.DateOnly(payload.ClassDate)

		if _, err = tx.NamedExecContext(ctx, `INSERT INTO class_logs (id, tenant_id, teacher_id, student_id, booking_id, reschedule_id, presence, subtype, content_covered, class_date, created_at) VALUES (:id, :tenant_id, :teacher_id, :student_id, :booking_id, :reschedule_id, :presence, :subtype, :content_covered, :class_date, :created_at)`, &payload); err != nil {
			return fmt.Errorf("insert class log: %w", err)
		}
		logs[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class log insert: %w", err)
	}
	return nil
}
