package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/aulaflow/agenda-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var bookingCols = []string{"id", "tenant_id", "teacher_id", "student_id", "day_of_week", "time_slot", "module", "type", "start_date", "created_at"}

func TestBookingRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	cols := append(append([]string{}, bookingCols...), "student_name", "avatar_url")
	rows := sqlmock.NewRows(cols).
		AddRow("b1", "t1", "teacher-1", "st1", "Segunda", "10:00", "A1", "REGULAR", nil, time.Now(), "Ana Souza", nil)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN profiles p ON p.id = b.student_id")).
		WithArgs("t1", "teacher-1").
		WillReturnRows(rows)

	views, err := repo.ListByTeacher(context.Background(), "t1", "teacher-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Ana Souza", views[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListByTeacherAndDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	rows := sqlmock.NewRows(bookingCols).
		AddRow("b1", "t1", "teacher-1", "st1", "Quarta", "14:30", "B2", "REGULAR", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE tenant_id = $1 AND teacher_id = $2 AND day_of_week = $3")).
		WithArgs("t1", "teacher-1", "Quarta").
		WillReturnRows(rows)

	bookings, err := repo.ListByTeacherAndDay(context.Background(), "t1", "teacher-1", "Quarta")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.Equal(t, "14:30", bookings[0].TimeSlot)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking := &models.Booking{
		TenantID:  "t1",
		TeacherID: "teacher-1",
		StudentID: "st1",
		DayOfWeek: "Segunda",
		TimeSlot:  "10:00",
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	require.NotEmpty(t, booking.ID)
	require.False(t, booking.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindBySlotEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("AND day_of_week = $3 AND time_slot = $4")).
		WithArgs("t1", "teacher-1", "Segunda", "10:00").
		WillReturnRows(sqlmock.NewRows(bookingCols))

	booking, err := repo.FindBySlot(context.Background(), "t1", "teacher-1", "Segunda", "10:00")
	require.NoError(t, err)
	require.Nil(t, booking)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDeleteByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE tenant_id = $1 AND student_id = $2")).
		WithArgs("t1", "st1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByStudent(context.Background(), "t1", "st1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
