package model

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2024-01-10", want: "2024-01-10"},
		{name: "surrounding spaces", input: " 2024-01-10 ", want: "2024-01-10"},
		{name: "rfc3339 utc", input: "2024-03-01T00:00:00.000Z", want: "2024-03-01"},
		{name: "rfc3339 offset rolls to utc day", input: "2024-03-01T01:30:00+05:30", want: "2024-02-29"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "10/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate_AddDaysCrossesMonth(t *testing.T) {
	got := MustParseDate("2024-02-29").AddDays(1)
	if got.String() != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %s", got)
	}
}

func TestBookingRange_JSON(t *testing.T) {
	raw := `{"ownerLabel":"Cohort A","startDate":"2024-01-10T00:00:00.000Z","endDate":"2024-01-15"}`

	var b BookingRange
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.StartDate.String() != "2024-01-10" || b.EndDate.String() != "2024-01-15" {
		t.Errorf("unexpected range %s..%s", b.StartDate, b.EndDate)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"ownerLabel":"Cohort A","startDate":"2024-01-10","endDate":"2024-01-15"}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestCandidateRange_OverlapsIsInclusive(t *testing.T) {
	booked := BookingRange{StartDate: MustParseDate("2024-01-10"), EndDate: MustParseDate("2024-01-15")}

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"touches end", "2024-01-15", "2024-01-20", true},
		{"touches start", "2024-01-01", "2024-01-10", true},
		{"inside", "2024-01-11", "2024-01-12", true},
		{"covers", "2024-01-01", "2024-01-31", true},
		{"day after", "2024-01-16", "2024-01-20", false},
		{"day before", "2024-01-01", "2024-01-09", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CandidateRange{StartDate: MustParseDate(tt.start), EndDate: MustParseDate(tt.end)}
			if got := c.Overlaps(booked); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}
