// Package claims provides domain types for the warranty claim lifecycle.
package claims

// ClaimStatus represents the lifecycle status of a warranty claim.
type ClaimStatus string

const (
	StatusDraft                   ClaimStatus = "DRAFT"
	StatusOpen                    ClaimStatus = "OPEN"
	StatusPendingEVMApproval      ClaimStatus = "PENDING_EVM_APPROVAL"
	StatusEVMApproved             ClaimStatus = "EVM_APPROVED"
	StatusEVMRejected             ClaimStatus = "EVM_REJECTED"
	StatusReadyForRepair          ClaimStatus = "READY_FOR_REPAIR"
	StatusProblemConflict         ClaimStatus = "PROBLEM_CONFLICT"
	StatusProblemSolved           ClaimStatus = "PROBLEM_SOLVED"
	StatusCustomerPaymentPending  ClaimStatus = "CUSTOMER_PAYMENT_PENDING"
	StatusCustomerPaid            ClaimStatus = "CUSTOMER_PAID"
	StatusReadyForHandover        ClaimStatus = "READY_FOR_HANDOVER"
	StatusHandoverPending         ClaimStatus = "HANDOVER_PENDING"
	StatusClaimDone               ClaimStatus = "CLAIM_DONE"
	StatusCustomerActionNeeded    ClaimStatus = "CUSTOMER_ACTION_NEEDED"
	StatusMoveOnSCRepair          ClaimStatus = "MOVE_ON_SC_REPAIR"
	StatusCancelRequested         ClaimStatus = "CANCEL_REQUESTED"
	StatusCanceledPending         ClaimStatus = "CANCELED_PENDING"
	StatusCanceledReadyToHandover ClaimStatus = "CANCELED_READY_TO_HANDOVER"
	StatusCanceledDone            ClaimStatus = "CANCELED_DONE"
)

// AllStatuses is the closed status vocabulary. Any value outside this set is a
// protocol error, never silently accepted.
var AllStatuses = []ClaimStatus{
	StatusDraft,
	StatusOpen,
	StatusPendingEVMApproval,
	StatusEVMApproved,
	StatusEVMRejected,
	StatusReadyForRepair,
	StatusProblemConflict,
	StatusProblemSolved,
	StatusCustomerPaymentPending,
	StatusCustomerPaid,
	StatusReadyForHandover,
	StatusHandoverPending,
	StatusClaimDone,
	StatusCustomerActionNeeded,
	StatusMoveOnSCRepair,
	StatusCancelRequested,
	StatusCanceledPending,
	StatusCanceledReadyToHandover,
	StatusCanceledDone,
}

// IsValidStatus checks if a claim status value is a member of the closed set.
func IsValidStatus(s ClaimStatus) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw string into a ClaimStatus.
func ParseStatus(raw string) (ClaimStatus, error) {
	s := ClaimStatus(raw)
	if !IsValidStatus(s) {
		return "", &ValidationError{Fields: []string{"status"}, Message: "unknown claim status: " + raw}
	}
	return s, nil
}

// IsTerminal returns true if the status is terminal (no more transitions).
// EVM_REJECTED is terminal: no resubmission path is modeled.
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusClaimDone || s == StatusCanceledDone || s == StatusEVMRejected
}

// IsCancellation returns true if the status belongs to the cancellation branch.
func (s ClaimStatus) IsCancellation() bool {
	return s == StatusCancelRequested || s == StatusCanceledPending ||
		s == StatusCanceledReadyToHandover || s == StatusCanceledDone
}

// IsProblem returns true if the status belongs to the problem/conflict branch.
func (s ClaimStatus) IsProblem() bool {
	return s == StatusProblemConflict || s == StatusProblemSolved
}

// ActorRole identifies who is invoking an operation. The role is threaded
// explicitly into every core call; the core never reads ambient session state.
type ActorRole string

const (
	RoleSCStaff      ActorRole = "SC_STAFF"
	RoleSCTechnician ActorRole = "SC_TECHNICIAN"
	RoleEVMStaff     ActorRole = "EVM_STAFF"
	RoleCustomer     ActorRole = "CUSTOMER"
	RoleAdmin        ActorRole = "ADMIN"
)

// IsValidRole checks if an actor role value is valid.
func IsValidRole(r ActorRole) bool {
	return r == RoleSCStaff || r == RoleSCTechnician || r == RoleEVMStaff ||
		r == RoleCustomer || r == RoleAdmin
}

// Actor is the explicit actor context passed into every core operation.
type Actor struct {
	ID   string    `json:"id"`
	Role ActorRole `json:"role"`
}

// ProblemType classifies a mid-repair problem report.
type ProblemType string

const (
	ProblemPartsShortage  ProblemType = "PARTS_SHORTAGE"
	ProblemWrongDiagnosis ProblemType = "WRONG_DIAGNOSIS"
	ProblemCustomerIssue  ProblemType = "CUSTOMER_ISSUE"
	ProblemOther          ProblemType = "OTHER"
)

// IsValidProblemType checks if a problem type value is valid.
func IsValidProblemType(p ProblemType) bool {
	return p == ProblemPartsShortage || p == ProblemWrongDiagnosis ||
		p == ProblemCustomerIssue || p == ProblemOther
}
