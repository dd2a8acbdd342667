package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaflow/agenda-api/internal/models"
)

type stubClassLogRepo struct {
	existsByBooking    map[string]bool
	existsByReschedule map[string]bool
	inserted           []models.ClassLog
	insertErr          error
}

func (s *stubClassLogRepo) ListByTeacherBetween(_ context.Context, _, _ string, _, _ time.Time) ([]models.ClassLog, error) {
	return nil, nil
}

func (s *stubClassLogRepo) ExistsForBookingOnDate(_ context.Context, bookingID string, date time.Time) (bool, error) {
	return s.existsByBooking[bookingID+"|"+date.Format("2006-01-02")], nil
}

func (s *stubClassLogRepo) ExistsForReschedule(_ context.Context, rescheduleID string) (bool, error) {
	return s.existsByReschedule[rescheduleID], nil
}

func (s *stubClassLogRepo) BulkInsert(_ context.Context, logs []models.ClassLog) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, logs...)
	return nil
}

type stubConsumerRepo struct {
	deleted []string
}

func (s *stubConsumerRepo) DeleteByIDs(_ context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

type stubPolicyRepo struct {
	count    int
	countErr error
	created  []models.Reschedule
}

func (s *stubPolicyRepo) CountByStudentSince(_ context.Context, _, _ string, _ time.Time, fault *models.RescheduleFault) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *stubPolicyRepo) Create(_ context.Context, reschedule *models.Reschedule) error {
	s.created = append(s.created, *reschedule)
	return nil
}

func newClassLogFixture(logs *stubClassLogRepo, consumer *stubConsumerRepo, policyRepo *stubPolicyRepo) *ClassLogService {
	policy := NewAbsencePolicy(policyRepo, 5, nil)
	return NewClassLogService(logs, consumer, policy, nil, nil)
}

func TestCommitBatchInsertsLogs(t *testing.T) {
	logs := &stubClassLogRepo{}
	svc := newClassLogFixture(logs, &stubConsumerRepo{}, &stubPolicyRepo{})
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresencePresent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Equal(t, "t1", logs.inserted[0].TenantID)
	assert.Equal(t, "teacher-1", logs.inserted[0].TeacherID)
	assert.Equal(t, date(2026, 8, 25), logs.inserted[0].ClassDate)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.MakeupsCreated)
}

func TestCommitBatchSkipsDuplicateBookingLog(t *testing.T) {
	logs := &stubClassLogRepo{existsByBooking: map[string]bool{"b1|2026-08-25": true}}
	svc := newClassLogFixture(logs, &stubConsumerRepo{}, &stubPolicyRepo{})
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresencePresent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	assert.Empty(t, result.Committed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "st1", result.Skipped[0].StudentID)
	assert.Empty(t, logs.inserted)
}

func TestCommitBatchConsumesReschedules(t *testing.T) {
	logs := &stubClassLogRepo{}
	consumer := &stubConsumerRepo{}
	svc := newClassLogFixture(logs, consumer, &stubPolicyRepo{})
	rescheduleID := "r1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", RescheduleID: &rescheduleID, Presence: models.PresencePresent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Equal(t, []string{"r1"}, consumer.deleted)
}

func TestCommitBatchRejectsBookingAndRescheduleTogether(t *testing.T) {
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, &stubPolicyRepo{})
	bookingID, rescheduleID := "b1", "r1"

	_, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, RescheduleID: &rescheduleID, Presence: models.PresencePresent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.Error(t, err)
}

func TestCommitBatchRejectsUnknownPresence(t *testing.T) {
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, &stubPolicyRepo{})

	_, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", Presence: "Atrasado", ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.Error(t, err)
}

func TestCommitBatchCreatesMakeupForStudentAbsence(t *testing.T) {
	policyRepo := &stubPolicyRepo{}
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, policyRepo)
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresenceAbsent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.MakeupsCreated, 1)
	makeup := result.MakeupsCreated[0]
	assert.Equal(t, "st1", makeup.StudentID)
	require.NotNil(t, makeup.CreatedByFault)
	assert.Equal(t, models.FaultStudent, *makeup.CreatedByFault)
	require.NotNil(t, makeup.OriginalBookingID)
	assert.Equal(t, "b1", *makeup.OriginalBookingID)
	assert.Nil(t, makeup.Date)
	assert.Nil(t, makeup.Time)
}

func TestCommitBatchStudentCapBlocksMakeup(t *testing.T) {
	policyRepo := &stubPolicyRepo{count: 5}
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, policyRepo)
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresenceAbsent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Empty(t, result.MakeupsCreated)
	assert.Empty(t, policyRepo.created)
}

func TestCommitBatchTeacherAbsenceBypassesCap(t *testing.T) {
	policyRepo := &stubPolicyRepo{count: 99}
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, policyRepo)
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresenceTeacherAbsent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.MakeupsCreated, 1)
	require.NotNil(t, result.MakeupsCreated[0].CreatedByFault)
	assert.Equal(t, models.FaultTeacher, *result.MakeupsCreated[0].CreatedByFault)
}

func TestCommitBatchMakeupAbsenceNeverSpawnsMakeup(t *testing.T) {
	policyRepo := &stubPolicyRepo{}
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, policyRepo)
	rescheduleID := "r1"
	subtype := models.SubtypeMakeup

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", RescheduleID: &rescheduleID, Presence: models.PresenceAbsent, Subtype: &subtype, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Empty(t, result.MakeupsCreated)
	assert.Empty(t, policyRepo.created)
}

func TestCommitBatchPolicyFailureDoesNotFailCommit(t *testing.T) {
	policyRepo := &stubPolicyRepo{countErr: assert.AnError}
	logs := &stubClassLogRepo{}
	svc := newClassLogFixture(logs, &stubConsumerRepo{}, policyRepo)
	bookingID := "b1"

	result, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{
		TeacherID: "teacher-1",
		Entries: []ClassLogEntry{
			{StudentID: "st1", BookingID: &bookingID, Presence: models.PresenceAbsent, ClassDate: "2026-08-25"},
		},
	}, date(2026, 8, 26))

	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Empty(t, result.MakeupsCreated)
}

func TestCommitBatchRequiresEntries(t *testing.T) {
	svc := newClassLogFixture(&stubClassLogRepo{}, &stubConsumerRepo{}, &stubPolicyRepo{})

	_, err := svc.CommitBatch(context.Background(), "t1", CommitClassLogsRequest{TeacherID: "teacher-1"}, date(2026, 8, 26))

	require.Error(t, err)
}
