package booking

// Status is the shared lifecycle for service, rental and roadside bookings.
// A booking starts pending, gets a provider attached, runs, then terminates.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusAssigned: true, StatusCancelled: true},
	StatusAssigned:   {StatusInProgress: true, StatusCancelled: true},
	StatusInProgress: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal step. Gap transitions
// (e.g. pending -> completed) are rejected, never silently skipped.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}
