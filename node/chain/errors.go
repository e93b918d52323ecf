package chain

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies why a ledger call was rejected.
type Kind int

const (
	// PolicyViolation covers gating, caps, payment mismatches and non-positive prices.
	PolicyViolation Kind = iota + 1
	// AuthorizationFailure means the caller lacks the role or approval the call requires.
	AuthorizationFailure
	// StateConflict means the call raced with a state change, e.g. an inactive listing.
	StateConflict
	// NotFound means the call referenced a listing, asset or contract that does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case PolicyViolation:
		return "PolicyViolation"
	case AuthorizationFailure:
		return "AuthorizationFailure"
	case StateConflict:
		return "StateConflict"
	case NotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code returns the gRPC status code rejections of kind k travel as.
func (k Kind) Code() codes.Code {
	switch k {
	case PolicyViolation:
		return codes.FailedPrecondition
	case AuthorizationFailure:
		return codes.PermissionDenied
	case StateConflict:
		return codes.Aborted
	case NotFound:
		return codes.NotFound
	default:
		return codes.Unknown
	}
}

// KindFromCode inverts Code. It returns zero for codes no rejection maps to.
func KindFromCode(code codes.Code) Kind {
	switch code {
	case codes.FailedPrecondition:
		return PolicyViolation
	case codes.PermissionDenied:
		return AuthorizationFailure
	case codes.Aborted:
		return StateConflict
	case codes.NotFound:
		return NotFound
	default:
		return 0
	}
}

// RevertError rejects a whole ledger call. Every effect of the call is discarded.
type RevertError struct {
	Kind   Kind
	Reason string
}

// Revert builds a rejection with a human readable reason.
func Revert(kind Kind, reason string) *RevertError {
	return &RevertError{Kind: kind, Reason: reason}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

// Is matches rejections by kind and reason, so errors rebuilt on the client side still
// compare equal to the sentinels declared by contract packages.
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Reason == e.Reason
}

// GRPCStatus carries the reason alone, so clients can rebuild the rejection from the status.
func (e *RevertError) GRPCStatus() *status.Status {
	return status.New(e.Kind.Code(), e.Reason)
}

// AsRevert extracts the rejection wrapped in err.
func AsRevert(err error) (*RevertError, bool) {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert, true
	}
	return nil, false
}

// KindOf returns the rejection kind of err, or zero when err is not a rejection.
func KindOf(err error) Kind {
	if revert, ok := AsRevert(err); ok {
		return revert.Kind
	}
	return 0
}

var (
	ErrInsufficientFunds = Revert(PolicyViolation, "insufficient funds for transfer")
	ErrReentrantCall     = Revert(StateConflict, "ReentrancyGuard: reentrant call")
	ErrCallDepth         = Revert(PolicyViolation, "max call depth exceeded")
	ErrNotPayable        = Revert(PolicyViolation, "recipient cannot receive native currency")
	ErrUnknownContract   = Revert(NotFound, "no contract deployed at address")

	// ErrTxClosed is returned when a ledger transaction is used after commit or rollback.
	ErrTxClosed = errors.New("ledger transaction already closed")
)
