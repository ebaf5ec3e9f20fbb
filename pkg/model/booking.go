package model

// BookingRange is a confirmed reservation that blocks overlapping requests.
// Both ends are inclusive.
type BookingRange struct {
	OwnerLabel string `json:"ownerLabel"`
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
}

func (b BookingRange) Valid() bool {
	return !b.StartDate.IsZero() && !b.EndDate.IsZero() && !b.StartDate.After(b.EndDate)
}

// CandidateRange is a caller-proposed range that has not been booked.
type CandidateRange struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
}

// Overlaps reports whether c and b share at least one day.
func (c CandidateRange) Overlaps(b BookingRange) bool {
	return !c.StartDate.After(b.EndDate) && !c.EndDate.Before(b.StartDate)
}

func (c CandidateRange) Valid() bool {
	return !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.StartDate.After(c.EndDate)
}
