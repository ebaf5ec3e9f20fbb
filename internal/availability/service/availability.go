package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	availabilityerrors "cohort/internal/availability/errors"
	"cohort/pkg/client"
	"cohort/pkg/config"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/metrics"
	"cohort/pkg/model"
)

// BookedDatesSource is the remote collaborator that owns the booked set.
type BookedDatesSource interface {
	GetBookedDates(ctx context.Context) ([]model.BookingRange, error)
}

type AvailabilityService interface {
	Refresh(ctx context.Context) error
	IsRangeAvailable(candidate model.CandidateRange) bool
	NextAvailableStart(requestedStart model.Date) model.Date
	ConflictingRanges(candidate model.CandidateRange) []model.BookingRange
	BookedRanges() []model.BookingRange
	Status() Status
}

// Status lets callers tell a stale cache (Loaded with Error) from a set that was
// never fetched (not Loaded).
type Status struct {
	Loading     bool       `json:"loading"`
	Loaded      bool       `json:"loaded"`
	Error       string     `json:"error,omitempty"`
	Count       int        `json:"count"`
	RefreshedAt *time.Time `json:"refreshedAt,omitempty"`
}

// snapshot is never mutated after it is published.
type snapshot struct {
	ranges      []model.BookingRange
	loaded      bool
	err         string
	refreshedAt time.Time
}

type availabilityService struct {
	source   BookedDatesSource
	cfg      *config.Config
	metrics  *metrics.Metrics
	current  atomic.Pointer[snapshot]
	inFlight atomic.Int32
	// serializes publishing, not fetching
	publishMu sync.Mutex
}

func NewAvailabilityService(source BookedDatesSource, cfg *config.Config, m *metrics.Metrics) AvailabilityService {
	s := &availabilityService{
		source:  source,
		cfg:     cfg,
		metrics: m,
	}
	s.current.Store(&snapshot{ranges: []model.BookingRange{}})
	return s
}

type triggerKey struct{}

// WithTrigger labels refreshes started with ctx for metrics and logs.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerOf(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok {
		return t
	}
	return "manual"
}

// Refresh replaces the booked set wholesale. On failure the previous set stays in
// place and the error is recorded in Status. Overlapping calls are allowed; the last
// one to resolve wins.
func (s *availabilityService) Refresh(ctx context.Context) error {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	trigger := triggerOf(ctx)
	ranges, err := s.fetch(ctx)

	s.publishMu.Lock()
	prev := s.current.Load()
	next := &snapshot{
		ranges:      prev.ranges,
		loaded:      prev.loaded,
		refreshedAt: prev.refreshedAt,
	}
	if err != nil {
		next.err = err.Error()
	} else {
		next.ranges = ranges
		next.loaded = true
		next.refreshedAt = time.Now().UTC()
	}
	s.current.Store(next)
	s.publishMu.Unlock()

	s.metrics.ObserveRefresh(trigger, err, len(next.ranges))

	if err != nil {
		s.cfg.Log.Warn("Booked dates refresh failed",
			"trigger", trigger,
			"kept_ranges", len(prev.ranges),
			"error", err,
		)
		return apperrors.Upstream(err.Error(), err)
	}

	s.cfg.Log.Info("Booked dates refreshed", "trigger", trigger, "count", len(ranges))
	return nil
}

func (s *availabilityService) fetch(ctx context.Context) ([]model.BookingRange, error) {
	ranges, err := s.source.GetBookedDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrRefreshFailed, describe(err))
	}

	for i, b := range ranges {
		if !b.Valid() {
			return nil, fmt.Errorf("%w: range %d (%s) has start %s after end %s",
				availabilityerrors.ErrRefreshFailed, i, b.OwnerLabel, b.StartDate, b.EndDate)
		}
	}

	out := make([]model.BookingRange, len(ranges))
	copy(out, ranges)
	return out, nil
}

func describe(err error) string {
	var remote *client.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}

func (s *availabilityService) IsRangeAvailable(candidate model.CandidateRange) bool {
	for _, b := range s.current.Load().ranges {
		if candidate.Overlaps(b) {
			return false
		}
	}
	return true
}

// NextAvailableStart returns the day after the latest end among bookings starting on
// or after requestedStart, or requestedStart itself when there are none.
func (s *availabilityService) NextAvailableStart(requestedStart model.Date) model.Date {
	var latestEnd model.Date
	found := false

	for _, b := range s.current.Load().ranges {
		if b.StartDate.Before(requestedStart) {
			continue
		}
		if !found || b.EndDate.After(latestEnd) {
			latestEnd = b.EndDate
			found = true
		}
	}

	if !found {
		return requestedStart
	}
	return latestEnd.AddDays(1)
}

func (s *availabilityService) ConflictingRanges(candidate model.CandidateRange) []model.BookingRange {
	conflicts := []model.BookingRange{}
	for _, b := range s.current.Load().ranges {
		if candidate.Overlaps(b) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

func (s *availabilityService) BookedRanges() []model.BookingRange {
	ranges := s.current.Load().ranges
	out := make([]model.BookingRange, len(ranges))
	copy(out, ranges)
	return out
}

func (s *availabilityService) Status() Status {
	snap := s.current.Load()
	status := Status{
		Loading: s.inFlight.Load() > 0,
		Loaded:  snap.loaded,
		Error:   snap.err,
		Count:   len(snap.ranges),
	}
	if !snap.refreshedAt.IsZero() {
		t := snap.refreshedAt
		status.RefreshedAt = &t
	}
	return status
}
