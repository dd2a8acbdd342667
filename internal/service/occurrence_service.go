package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aulaflow/agenda-api/internal/models"
)

type occurrenceBookingRepository interface {
	ListByTeacherAndDay(ctx context.Context, tenantID, teacherID, dayOfWeek string) ([]models.Booking, error)
}

type occurrenceRescheduleRepository interface {
	ListByTeacherAndDate(ctx context.Context, tenantID, teacherID string, date time.Time) ([]models.Reschedule, error)
}

type occurrenceProfileRepository interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// SkippedDay records one calendar day whose expansion was dropped because a
// backend read failed. Partial results are preferred over total failure.
type SkippedDay struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

// ExpandOptions tunes an expansion pass.
type ExpandOptions struct {
	// Now anchors "today". When OnlyElapsedToday is set, occurrences on
	// Now's date whose slot time has not yet arrived are excluded.
	Now              time.Time
	OnlyElapsedToday bool
}

// ExpandResult carries the expanded occurrences together with the days that
// could not be expanded, so callers can surface a warning instead of
// silently masking partial data.
type ExpandResult struct {
	Occurrences []models.Occurrence `json:"occurrences"`
	SkippedDays []SkippedDay        `json:"skipped_days,omitempty"`
}

// OccurrenceService expands bookings and reschedules into the concrete
// lesson instances expected inside a date range.
type OccurrenceService struct {
	bookings    occurrenceBookingRepository
	reschedules occurrenceRescheduleRepository
	profiles    occurrenceProfileRepository
	logger      *zap.Logger
}

// NewOccurrenceService instantiates OccurrenceService.
func NewOccurrenceService(bookings occurrenceBookingRepository, reschedules occurrenceRescheduleRepository, profiles occurrenceProfileRepository, logger *zap.Logger) *OccurrenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceService{bookings: bookings, reschedules: reschedules, profiles: profiles, logger: logger}
}

// Expand walks every calendar day in [from, to] ascending and emits one
// REGULAR occurrence per active booking on that weekday plus one REPOSIÇÃO
// occurrence per reschedule dated exactly that day. Sundays never produce
// occurrences. A day whose reads fail is skipped whole and reported in
// SkippedDays; expansion continues with the next day.
func (s *OccurrenceService) Expand(ctx context.Context, tenantID, teacherID string, from, to time.Time, opts ExpandOptions) ExpandResult {
	result := ExpandResult{Occurrences: []models.Occurrence{}}

	for d := models.DateOnly(from); !d.After(models.DateOnly(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		dayName, ok := models.WeekdayName(int(d.Weekday()) - 1)
		if !ok {
			continue
		}

		dayOccurrences, err := s.expandDay(ctx, tenantID, teacherID, d, dayName)
		if err != nil {
			s.logger.Warn("day expansion skipped",
				zap.String("teacher_id", teacherID),
				zap.Time("date", d),
				zap.Error(err))
			result.SkippedDays = append(result.SkippedDays, SkippedDay{Date: d, Reason: err.Error()})
			continue
		}

		if opts.OnlyElapsedToday && !opts.Now.IsZero() && models.SameDate(d, opts.Now) {
			nowMinutes := opts.Now.Hour()*60 + opts.Now.Minute()
			kept := dayOccurrences[:0]
			for _, occ := range dayOccurrences {
				if models.SlotMinutes(occ.Time) <= nowMinutes {
					kept = append(kept, occ)
				}
			}
			dayOccurrences = kept
		}

		result.Occurrences = append(result.Occurrences, dayOccurrences...)
	}

	s.denormalize(ctx, result.Occurrences)
	return result
}

func (s *OccurrenceService) expandDay(ctx context.Context, tenantID, teacherID string, d time.Time, dayName string) ([]models.Occurrence, error) {
	bookings, err := s.bookings.ListByTeacherAndDay(ctx, tenantID, teacherID, dayName)
	if err != nil {
		return nil, err
	}
	reschedules, err := s.reschedules.ListByTeacherAndDate(ctx, tenantID, teacherID, d)
	if err != nil {
		return nil, err
	}

	occurrences := make([]models.Occurrence, 0, len(bookings)+len(reschedules))
	for _, booking := range bookings {
		if !booking.ActiveOn(d) {
			continue
		}
		occurrences = append(occurrences, models.Occurrence{
			Type:      models.OccurrenceRegular,
			SourceID:  booking.ID,
			StudentID: booking.StudentID,
			Module:    booking.Module,
			Date:      d,
			Time:      booking.TimeSlot,
		})
	}
	for _, reschedule := range reschedules {
		occ := models.Occurrence{
			Type:      models.OccurrenceMakeup,
			SourceID:  reschedule.ID,
			StudentID: reschedule.StudentID,
			Date:      d,
		}
		if reschedule.Time != nil {
			occ.Time = *reschedule.Time
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences, nil
}

// denormalize attaches student names for rendering. Best-effort: a profile
// read failure leaves names blank.
func (s *OccurrenceService) denormalize(ctx context.Context, occurrences []models.Occurrence) {
	if s.profiles == nil || len(occurrences) == 0 {
		return
	}
	idSet := make(map[string]struct{})
	for _, occ := range occurrences {
		idSet[occ.StudentID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	profiles, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("student profile lookup failed", zap.Error(err))
		return
	}
	for i := range occurrences {
		if p, ok := profiles[occurrences[i].StudentID]; ok {
			occurrences[i].StudentName = p.FullName
		}
	}
}

// SortForLogging orders occurrences for bulk-logging screens: today's
// not-yet-late lessons first, older backlog after. Within each group the
// original date order is kept.
func SortForLogging(occurrences []models.Occurrence, today time.Time) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		return !occurrences[i].LateRelativeTo(today) && occurrences[j].LateRelativeTo(today)
	})
}
