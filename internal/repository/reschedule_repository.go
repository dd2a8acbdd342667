package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aulaflow/agenda-api/internal/models"
)

// RescheduleRepository provides persistence for one-off makeup lessons.
type RescheduleRepository struct {
	db *sqlx.DB
}

// NewRescheduleRepository creates a new reschedule repository.
func NewRescheduleRepository(db *sqlx.DB) *RescheduleRepository {
	return &RescheduleRepository{db: db}
}

const rescheduleColumns = `id, tenant_id, teacher_id, student_id, date, time, original_booking_id, created_by_fault, created_at`

// ListByTeacherAndDate returns a teacher's makeups scheduled on one calendar
// date. Unscheduled makeups (date still null) never match.
func (r *RescheduleRepository) ListByTeacherAndDate(ctx context.Context, tenantID, teacherID string, date time.Time) ([]models.Reschedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedules WHERE tenant_id = $1 AND teacher_id = $2 AND date = $3 ORDER BY time ASC`, rescheduleColumns)
	var reschedules []models.Reschedule
	if err := r.db.SelectContext(ctx, &reschedules, query, tenantID, teacherID, models.DateOnly(date)); err != nil {
		return nil, fmt.Errorf("list reschedules by teacher and date: %w", err)
	}
	return reschedules, nil
}

// ListUnscheduledByTeacher returns the teacher's makeups still waiting for a
// date, for the staff scheduling screen.
func (r *RescheduleRepository) ListUnscheduledByTeacher(ctx context.Context, tenantID, teacherID string) ([]models.Reschedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedules WHERE tenant_id = $1 AND teacher_id = $2 AND date IS NULL ORDER BY created_at ASC`, rescheduleColumns)
	var reschedules []models.Reschedule
	if err := r.db.SelectContext(ctx, &reschedules, query, tenantID, teacherID); err != nil {
		return nil, fmt.Errorf("list unscheduled reschedules: %w", err)
	}
	return reschedules, nil
}

// CountByStudentSince counts a student's makeups created at or after the
// given instant, optionally filtered by fault attribution. The monthly cap
// check passes the first day of the current month.
func (r *RescheduleRepository) CountByStudentSince(ctx context.Context, tenantID, studentID string, since time.Time, fault *models.RescheduleFault) (int, error) {
	query := `SELECT COUNT(*) FROM reschedules WHERE tenant_id = $1 AND student_id = $2 AND created_at >= $3`
	args := []interface{}{tenantID, studentID, since}
	if fault != nil {
		query += ` AND created_by_fault = $4`
		args = append(args, *fault)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count reschedules by student: %w", err)
	}
	return count, nil
}

// FindByID loads a reschedule by id.
func (r *RescheduleRepository) FindByID(ctx context.Context, id string) (*models.Reschedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedules WHERE id = $1`, rescheduleColumns)
	var reschedule models.Reschedule
	if err := r.db.GetContext(ctx, &reschedule, query, id); err != nil {
		return nil, err
	}
	return &reschedule, nil
}

// Create stores a new reschedule record.
func (r *RescheduleRepository) Create(ctx context.Context, reschedule *models.Reschedule) error {
	if reschedule.ID == "" {
		reschedule.ID = uuid.NewString()
	}
	if reschedule.CreatedAt.IsZero() {
		reschedule.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO reschedules (id, tenant_id, teacher_id, student_id, date, time, original_booking_id, created_by_fault, created_at) VALUES (:id, :tenant_id, :teacher_id, :student_id, :date, :time, :original_booking_id, :created_by_fault, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reschedule); err != nil {
		return fmt.Errorf("create reschedule: %w", err)
	}
	return nil
}

// Schedule assigns a concrete date and time to a pending makeup.
func (r *RescheduleRepository) Schedule(ctx context.Context, id string, date time.Time, timeSlot string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE reschedules SET date = $1, time = $2 WHERE id = $3`, models.DateOnly(date), timeSlot, id); err != nil {
		return fmt.Errorf("schedule reschedule: %w", err)
	}
	return nil
}

// DeleteByIDs removes consumed makeups once class logs reference them.
func (r *RescheduleRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM reschedules WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build reschedule delete: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete reschedules: %w", err)
	}
	return nil
}

// Delete removes a single reschedule by id.
func (r *RescheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reschedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reschedule: %w", err)
	}
	return nil
}
