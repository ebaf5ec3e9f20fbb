package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cohort/pkg/client"
	"cohort/pkg/config"
	apperrors "cohort/pkg/errors"
	"cohort/pkg/logger"
	"cohort/pkg/metrics"
	"cohort/pkg/model"
)

type mockSource struct {
	getBookedDatesFunc func(ctx context.Context) ([]model.BookingRange, error)
}

func (m *mockSource) GetBookedDates(ctx context.Context) ([]model.BookingRange, error) {
	if m.getBookedDatesFunc != nil {
		return m.getBookedDatesFunc(ctx)
	}
	return []model.BookingRange{}, nil
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Log = logger.Discard()
	return cfg
}

func booking(owner, start, end string) model.BookingRange {
	return model.BookingRange{
		OwnerLabel: owner,
		StartDate:  model.MustParseDate(start),
		EndDate:    model.MustParseDate(end),
	}
}

func candidate(start, end string) model.CandidateRange {
	return model.CandidateRange{
		StartDate: model.MustParseDate(start),
		EndDate:   model.MustParseDate(end),
	}
}

func newLoadedService(t *testing.T, ranges ...model.BookingRange) AvailabilityService {
	t.Helper()
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) { return ranges, nil },
	}, testConfig(), metrics.New())
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return svc
}

func TestIsRangeAvailable_OverlapScenario(t *testing.T) {
	b := booking("North College", "2024-01-10", "2024-01-15")
	svc := newLoadedService(t, b)

	c := candidate("2024-01-14", "2024-01-20")
	if svc.IsRangeAvailable(c) {
		t.Error("expected overlapping candidate to be unavailable")
	}

	conflicts := svc.ConflictingRanges(c)
	if len(conflicts) != 1 || conflicts[0] != b {
		t.Errorf("unexpected conflicts %+v", conflicts)
	}
}

func TestIsRangeAvailable_InclusiveBoundaries(t *testing.T) {
	svc := newLoadedService(t, booking("A", "2024-01-10", "2024-01-15"))

	tests := []struct {
		name      string
		candidate model.CandidateRange
		want      bool
	}{
		{"ends on booked start", candidate("2024-01-05", "2024-01-10"), false},
		{"starts on booked end", candidate("2024-01-15", "2024-01-20"), false},
		{"ends the day before", candidate("2024-01-01", "2024-01-09"), true},
		{"starts the day after", candidate("2024-01-16", "2024-01-20"), true},
		{"contains booking", candidate("2024-01-01", "2024-01-31"), false},
		{"inside booking", candidate("2024-01-11", "2024-01-12"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsRangeAvailable(tt.candidate); got != tt.want {
				t.Errorf("IsRangeAvailable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRangeAvailable_EmptySet(t *testing.T) {
	svc := NewAvailabilityService(&mockSource{}, testConfig(), nil)
	if !svc.IsRangeAvailable(candidate("2024-01-01", "2024-12-31")) {
		t.Error("everything is available before any booking is known")
	}
}

func TestConflictingRanges_PreservesRemoteOrder(t *testing.T) {
	ranges := []model.BookingRange{
		booking("C", "2024-03-01", "2024-03-05"),
		booking("A", "2024-01-01", "2024-01-05"),
		booking("X", "2024-06-01", "2024-06-05"),
		booking("B", "2024-02-01", "2024-02-05"),
	}
	svc := newLoadedService(t, ranges...)

	got := svc.ConflictingRanges(candidate("2024-01-03", "2024-03-02"))
	want := []string{"C", "A", "B"}
	if len(got) != len(want) {
		t.Fatalf("got %d conflicts, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.OwnerLabel != want[i] {
			t.Errorf("conflict %d = %s, want %s", i, b.OwnerLabel, want[i])
		}
	}
}

// Availability and conflicts must agree for every candidate.
func TestAvailabilityMatchesConflicts(t *testing.T) {
	svc := newLoadedService(t,
		booking("A", "2024-01-10", "2024-01-15"),
		booking("B", "2024-02-01", "2024-02-01"),
		booking("C", "2024-02-20", "2024-03-05"),
	)

	start := model.MustParseDate("2024-01-01")
	for i := 0; i < 70; i++ {
		for length := 0; length < 10; length++ {
			c := model.CandidateRange{StartDate: start.AddDays(i), EndDate: start.AddDays(i + length)}
			available := svc.IsRangeAvailable(c)
			conflicts := svc.ConflictingRanges(c)
			if available != (len(conflicts) == 0) {
				t.Fatalf("candidate %s..%s: available=%v conflicts=%d", c.StartDate, c.EndDate, available, len(conflicts))
			}
		}
	}
}

func TestNextAvailableStart(t *testing.T) {
	tests := []struct {
		name   string
		booked []model.BookingRange
		from   string
		want   string
	}{
		{
			name: "no bookings",
			from: "2024-02-01",
			want: "2024-02-01",
		},
		{
			name:   "booking after requested start",
			booked: []model.BookingRange{booking("A", "2024-03-01", "2024-03-10")},
			from:   "2024-02-15",
			want:   "2024-03-11",
		},
		{
			name:   "booking starting before requested start is ignored",
			booked: []model.BookingRange{booking("A", "2024-01-01", "2024-03-10")},
			from:   "2024-02-15",
			want:   "2024-02-15",
		},
		{
			name:   "booking starting on requested start counts",
			booked: []model.BookingRange{booking("A", "2024-02-15", "2024-02-20")},
			from:   "2024-02-15",
			want:   "2024-02-21",
		},
		{
			name: "latest end wins regardless of order",
			booked: []model.BookingRange{
				booking("A", "2024-03-01", "2024-04-30"),
				booking("B", "2024-05-01", "2024-05-02"),
				booking("C", "2024-03-10", "2024-03-12"),
			},
			from: "2024-02-01",
			want: "2024-05-03",
		},
		{
			name:   "crosses a month boundary",
			booked: []model.BookingRange{booking("A", "2024-02-20", "2024-02-29")},
			from:   "2024-02-01",
			want:   "2024-03-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLoadedService(t, tt.booked...)
			got := svc.NextAvailableStart(model.MustParseDate(tt.from))
			if !got.Equal(model.MustParseDate(tt.want)) {
				t.Errorf("NextAvailableStart(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestRefresh_FailureKeepsPreviousSet(t *testing.T) {
	fail := false
	source := &mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) {
			if fail {
				return nil, &client.RemoteError{Operation: "get booked dates", Message: "database offline"}
			}
			return []model.BookingRange{booking("A", "2024-01-10", "2024-01-15")}, nil
		},
	}
	svc := NewAvailabilityService(source, testConfig(), metrics.New())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	firstStatus := svc.Status()

	fail = true
	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeUpstream {
		t.Errorf("expected upstream error, got %v", err)
	}

	status := svc.Status()
	if !status.Loaded || status.Count != 1 {
		t.Errorf("previous set should be kept, status = %+v", status)
	}
	if !strings.HasPrefix(status.Error, "failed to load booked dates") || !strings.Contains(status.Error, "database offline") {
		t.Errorf("unexpected error string %q", status.Error)
	}
	if !status.RefreshedAt.Equal(*firstStatus.RefreshedAt) {
		t.Error("refreshedAt should still point at the last successful load")
	}
	if svc.IsRangeAvailable(candidate("2024-01-12", "2024-01-12")) {
		t.Error("queries must keep answering from the last good set")
	}

	fail = false
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("recovery refresh: %v", err)
	}
	if svc.Status().Error != "" {
		t.Error("successful refresh should clear the error")
	}
}

func TestRefresh_NeverLoaded(t *testing.T) {
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) {
			return nil, errors.New("connection refused")
		},
	}, testConfig(), nil)

	_ = svc.Refresh(context.Background())

	status := svc.Status()
	if status.Loaded || status.Count != 0 || status.RefreshedAt != nil {
		t.Errorf("unexpected status %+v", status)
	}
	if status.Error == "" {
		t.Error("expected error to be recorded")
	}
	if got := svc.NextAvailableStart(model.MustParseDate("2024-02-01")); !got.Equal(model.MustParseDate("2024-02-01")) {
		t.Errorf("empty set should return requested start, got %s", got)
	}
}

func TestRefresh_InvalidRangeFailsWholeRefresh(t *testing.T) {
	first := true
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) {
			if first {
				first = false
				return []model.BookingRange{booking("A", "2024-01-10", "2024-01-15")}, nil
			}
			return []model.BookingRange{
				booking("B", "2024-05-01", "2024-05-05"),
				{OwnerLabel: "broken", StartDate: model.MustParseDate("2024-06-10"), EndDate: model.MustParseDate("2024-06-01")},
			}, nil
		},
	}, testConfig(), nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected invalid range to fail the refresh")
	}

	ranges := svc.BookedRanges()
	if len(ranges) != 1 || ranges[0].OwnerLabel != "A" {
		t.Errorf("set must not be partially overwritten, got %+v", ranges)
	}
}

func TestRefresh_ReportsLoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) {
			close(started)
			<-release
			return nil, nil
		},
	}, testConfig(), nil)

	done := make(chan struct{})
	go func() {
		_ = svc.Refresh(context.Background())
		close(done)
	}()

	<-started
	if !svc.Status().Loading {
		t.Error("expected loading while refresh is in flight")
	}
	close(release)
	<-done
	if svc.Status().Loading {
		t.Error("expected loading to clear")
	}
}

// Readers never observe a mix of two snapshots.
func TestRefresh_ConcurrentReadersSeeWholeSets(t *testing.T) {
	setA := []model.BookingRange{booking("A", "2024-01-01", "2024-01-02"), booking("A", "2024-01-05", "2024-01-06")}
	setB := []model.BookingRange{booking("B", "2024-02-01", "2024-02-02"), booking("B", "2024-02-05", "2024-02-06"), booking("B", "2024-02-09", "2024-02-10")}

	var mu sync.Mutex
	toggle := false
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(context.Context) ([]model.BookingRange, error) {
			mu.Lock()
			defer mu.Unlock()
			toggle = !toggle
			if toggle {
				return setA, nil
			}
			return setB, nil
		},
	}, testConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				_ = svc.Refresh(context.Background())
			}
		}()
	}

	for ctx.Err() == nil {
		ranges := svc.BookedRanges()
		if len(ranges) == 0 {
			continue
		}
		owner := ranges[0].OwnerLabel
		wantLen := map[string]int{"A": len(setA), "B": len(setB)}[owner]
		if len(ranges) != wantLen {
			t.Fatalf("partial snapshot: %d ranges for owner %s", len(ranges), owner)
		}
		for _, r := range ranges {
			if r.OwnerLabel != owner {
				t.Fatalf("mixed snapshot: %s and %s", owner, r.OwnerLabel)
			}
		}
	}
	wg.Wait()
}

func TestRefresh_TimeoutIsReadable(t *testing.T) {
	svc := NewAvailabilityService(&mockSource{
		getBookedDatesFunc: func(ctx context.Context) ([]model.BookingRange, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}, testConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = svc.Refresh(ctx)

	if got := svc.Status().Error; got != "failed to load booked dates: request timed out" {
		t.Errorf("unexpected error %q", got)
	}
}
