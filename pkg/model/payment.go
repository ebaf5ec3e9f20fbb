package model

// OrderRequest is what a caller asks the payment backend to charge for.
// Amount is in minor currency units.
type OrderRequest struct {
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Currency       string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	RequesterName  string `json:"requesterName" validate:"required,min=2,max=100"`
	RequesterOrg   string `json:"requesterOrg" validate:"required,min=2,max=200"`
	RequesterEmail string `json:"requesterEmail" validate:"required,email"`
	RequesterPhone string `json:"requesterPhone" validate:"omitempty,e164"`
	Headcount      int    `json:"headcount" validate:"required,min=1,max=500"`
}

type Requester struct {
	Email     string `json:"email"`
	Org       string `json:"org"`
	Headcount int    `json:"headcount"`
}

// PaymentOrder is created once per checkout attempt and never reused.
type PaymentOrder struct {
	OrderID       string    `json:"orderId"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	IssuedAgainst Requester `json:"issuedAgainst"`
}

// PaymentProof comes back from the checkout widget and is untrusted until verified remotely.
type PaymentProof struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyPaymentRequest struct {
	OrderID        string `json:"orderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
	Amount         int64  `json:"amount"`
	RequesterEmail string `json:"requesterEmail"`
	RequesterOrg   string `json:"requesterOrg"`
}

type CheckoutPrefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutConfig is handed to the external checkout widget.
type CheckoutConfig struct {
	KeyID       string          `json:"keyId"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	OrderID     string          `json:"orderId"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Prefill     CheckoutPrefill `json:"prefill"`
	ThemeColor  string          `json:"themeColor"`
}
