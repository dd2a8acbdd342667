package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aulaflow/agenda-api/internal/models"
)

// BookingRepository provides persistence for recurring weekly bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, tenant_id, teacher_id, student_id, day_of_week, time_slot, module, type, start_date, created_at`

// ListByTeacher returns every booking of a teacher with denormalized student
// display data, for the weekly grid.
func (r *BookingRepository) ListByTeacher(ctx context.Context, tenantID, teacherID string) ([]models.BookingView, error) {
	const query = `
SELECT
	b.id, b.tenant_id, b.teacher_id, b.student_id, b.day_of_week, b.time_slot,
	b.module, b.type, b.start_date, b.created_at,
	p.full_name AS student_name,
	p.avatar_url AS avatar_url
FROM bookings b
JOIN profiles p ON p.id = b.student_id
WHERE b.tenant_id = $1 AND b.teacher_id = $2
ORDER BY b.day_of_week ASC, b.time_slot ASC`
	var views []models.BookingView
	if err := r.db.SelectContext(ctx, &views, query, tenantID, teacherID); err != nil {
		return nil, fmt.Errorf("list bookings by teacher: %w", err)
	}
	return views, nil
}

// ListByTeacherAndDay returns a teacher's bookings for one weekday.
func (r *BookingRepository) ListByTeacherAndDay(ctx context.Context, tenantID, teacherID, dayOfWeek string) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE tenant_id = $1 AND teacher_id = $2 AND day_of_week = $3 ORDER BY time_slot ASC`, bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, tenantID, teacherID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list bookings by teacher and day: %w", err)
	}
	return bookings, nil
}

// ListByStudent returns every booking of a student across teachers.
func (r *BookingRepository) ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE tenant_id = $1 AND student_id = $2 ORDER BY day_of_week ASC, time_slot ASC`, bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, tenantID, studentID); err != nil {
		return nil, fmt.Errorf("list bookings by student: %w", err)
	}
	return bookings, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindBySlot returns the occupant of one (teacher, day, time) cell, or nil.
func (r *BookingRepository) FindBySlot(ctx context.Context, tenantID, teacherID, dayOfWeek, timeSlot string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE tenant_id = $1 AND teacher_id = $2 AND day_of_week = $3 AND time_slot = $4`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, tenantID, teacherID, dayOfWeek, timeSlot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking by slot: %w", err)
	}
	return &booking, nil
}

// Create stores a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO bookings (id, tenant_id, teacher_id, student_id, day_of_week, time_slot, module, type, start_date, created_at) VALUES (:id, :tenant_id, :teacher_id, :student_id, :day_of_week, :time_slot, :module, :type, :start_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Delete removes a booking by id.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// DeleteByStudent removes every booking of a student, used when a student is
// unassigned or removed from the school.
func (r *BookingRepository) DeleteByStudent(ctx context.Context, tenantID, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE tenant_id = $1 AND student_id = $2`, tenantID, studentID); err != nil {
		return fmt.Errorf("delete bookings by student: %w", err)
	}
	return nil
}
