package model

type Participant struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Registration is the internship registration record before payment is attached.
type Registration struct {
	OrganizationName string        `json:"organizationName" validate:"required,min=2,max=200"`
	ContactName      string        `json:"contactName" validate:"required,min=2,max=100"`
	ContactEmail     string        `json:"contactEmail" validate:"required,email"`
	ContactPhone     string        `json:"contactPhone" validate:"required,e164"`
	Participants     []Participant `json:"participants" validate:"required,min=1,max=500,unique_participants,dive"`
	StartDate        Date          `json:"startDate"`
	EndDate          Date          `json:"endDate"`
	Notes            string        `json:"notes,omitempty" validate:"max=2000"`
}

func (r Registration) Range() CandidateRange {
	return CandidateRange{StartDate: r.StartDate, EndDate: r.EndDate}
}

// RegistrationPayload is what gets submitted once the payment has been verified.
type RegistrationPayload struct {
	Registration
	PaymentProof
	Amount int64 `json:"amount"`
}

type SubmissionResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	RegistrationID string `json:"registrationId,omitempty"`
}
