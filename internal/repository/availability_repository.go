package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aulaflow/agenda-api/internal/models"
)

// AvailabilityRepository persists teachers' declared free slots.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByTeacher returns every declared free slot of a teacher.
func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Availability, error) {
	const query = `SELECT teacher_id, day_of_week, start_time FROM availabilities WHERE teacher_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var slots []models.Availability
	if err := r.db.SelectContext(ctx, &slots, query, teacherID); err != nil {
		return nil, fmt.Errorf("list availability by teacher: %w", err)
	}
	return slots, nil
}

// ReplaceAll swaps a teacher's entire availability set for the given one.
// Delete and insert run inside one transaction so a failure can never strand
// the teacher with zero availability.
func (r *AvailabilityRepository) ReplaceAll(ctx context.Context, teacherID string, slots []models.Availability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability publish: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM availabilities WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}

	for i := range slots {
		slot := slots[i]
		slot.TeacherID = teacherID
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO availabilities (teacher_id, day_of_week, start_time) VALUES (:teacher_id, :day_of_week, :start_time)`, &slot); err != nil {
			return fmt.Errorf("insert availability slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit availability publish: %w", err)
	}
	return nil
}
