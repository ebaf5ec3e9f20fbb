package core

type State string

const (
	Idle                 State = "idle"
	ScriptLoading        State = "script_loading"
	OrderCreating        State = "order_creating"
	AwaitingUserCheckout State = "awaiting_user_checkout"
	Verifying            State = "verifying"
	Submitting           State = "submitting"
	Succeeded            State = "succeeded"
	Errored              State = "errored"
	CancelledByUser      State = "cancelled_by_user"
)

// transitions lists every allowed move. Errored is reachable from each
// non-terminal state, CancelledByUser only while the widget is open.
var transitions = map[State][]State{
	Idle:                 {ScriptLoading, Errored},
	ScriptLoading:        {OrderCreating, Errored},
	OrderCreating:        {AwaitingUserCheckout, Errored},
	AwaitingUserCheckout: {Verifying, CancelledByUser, Errored},
	Verifying:            {Submitting, Errored},
	Submitting:           {Succeeded, Errored},
}

func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) Terminal() bool {
	return s == Succeeded || s == Errored || s == CancelledByUser
}

func (s State) String() string {
	return string(s)
}
