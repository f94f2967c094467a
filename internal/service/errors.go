package service

import "errors"

// Kind groups service errors by how the caller should surface them.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindPrecondition
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a typed failure of a registration or catalog operation. Values
// are compared by identity with errors.Is.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// KindOf returns the Kind of err, or 0 when err is not a service error
// (for example a persistence failure).
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

var (
	ErrEventNotFound        = newError(KindNotFound, "event not found")
	ErrRegistrationNotFound = newError(KindNotFound, "registration not found")
	ErrNotRegistered        = newError(KindNotFound, "you are not registered for this event")
	ErrNotificationNotFound = newError(KindNotFound, "notification not found")

	ErrEventNotVisible     = newError(KindPrecondition, "this event is not available for registration")
	ErrDeadlinePassed      = newError(KindPrecondition, "registration deadline has passed")
	ErrEventEnded          = newError(KindPrecondition, "event has already ended")
	ErrEventAlreadyStarted = newError(KindPrecondition, "cannot unregister from an event that has already started")
	ErrAlreadyRegistered   = newError(KindPrecondition, "you are already registered for this event")
	ErrAlreadyCancelled    = newError(KindPrecondition, "registration is already cancelled")
	ErrEventFull           = newError(KindPrecondition, "event is full and waitlist is not enabled")
	ErrWaitlistFull        = newError(KindPrecondition, "event is full and waitlist is also full")
	ErrInvalidSchedule     = newError(KindPrecondition, "start must be before end and registration deadline before start")
	ErrInvalidCapacity     = newError(KindPrecondition, "capacities must satisfy 1 <= min <= max and waitlist capacity >= 0")

	ErrCapacityBelowConfirmed = newError(KindInvariant, "max capacity cannot be less than confirmed registrations")
	ErrInvalidStateTransition = newError(KindInvariant, "invalid registration state transition")
)
