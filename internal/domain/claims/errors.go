package claims

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across the claim lifecycle.
var (
	// ErrConcurrencyConflict indicates a compare-and-swap save failed because
	// the aggregate was modified since load. Recoverable by retry from a fresh load.
	ErrConcurrencyConflict = errors.New("concurrency conflict: claim version mismatch")

	// ErrClaimNotFound indicates the referenced claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")
)

// IllegalTransitionError indicates the operation is not permitted from the
// claim's current state. State authority takes precedence over data
// completeness: a structurally valid payload does not make the transition legal.
type IllegalTransitionError struct {
	CurrentState ClaimStatus
	Operation    Operation
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: operation %s not permitted from state %s", e.Operation, e.CurrentState)
}

// UnauthorizedError indicates the actor role lacks permission for the
// operation in the current state.
type UnauthorizedError struct {
	Role      ActorRole
	Operation Operation
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: role %s may not perform %s", e.Role, e.Operation)
}

// ValidationError indicates the payload is missing or carries invalid required
// fields. Fields lists every offending field, not just the first.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "validation failed: " + e.Message
	}
	return "validation failed: invalid fields: " + strings.Join(e.Fields, ", ")
}

// EligibilityBlockedError indicates a domain-specific guard failed, for example
// warranty eligibility or parts availability. Reasons carries every failing
// check so the actor gets a complete explanation.
type EligibilityBlockedError struct {
	Reasons []string
}

func (e *EligibilityBlockedError) Error() string {
	return "blocked by domain guard: " + strings.Join(e.Reasons, "; ")
}

// IsIllegalTransition reports whether err is an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var target *IllegalTransitionError
	return errors.As(err, &target)
}

// IsUnauthorized reports whether err is an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

// IsValidationFailed reports whether err is a ValidationError.
func IsValidationFailed(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsEligibilityBlocked reports whether err is an EligibilityBlockedError.
func IsEligibilityBlocked(err error) bool {
	var target *EligibilityBlockedError
	return errors.As(err, &target)
}
