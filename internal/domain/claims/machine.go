package claims

import (
	"fmt"
	"sort"
	"time"
)

// EligibilityChecker is the guard hook consulted before a diagnosis is
// submitted or approved. Implementations resolve the vehicle and its model's
// warranty conditions outside the domain.
type EligibilityChecker interface {
	CheckEligibility(vehicleID string, asOf time.Time) (eligible bool, reasons []string, err error)
}

// StateMachine owns the transition table and guard logic for a single claim.
// It is stateless between calls; every operation is a synchronous single-pass
// function over one aggregate, with concurrency left to the storage layer's
// compare-and-swap discipline.
type StateMachine struct {
	eligibility EligibilityChecker
	now         func() time.Time
}

// Option configures a StateMachine.
type Option func(*StateMachine)

// WithEligibilityChecker wires the eligibility guard for submitDiagnostic and
// approve. Without it those transitions skip the eligibility check.
func WithEligibilityChecker(checker EligibilityChecker) Option {
	return func(m *StateMachine) { m.eligibility = checker }
}

// WithClock overrides the machine's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *StateMachine) { m.now = now }
}

// NewStateMachine creates a state machine.
func NewStateMachine(opts ...Option) *StateMachine {
	m := &StateMachine{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// transitionRule is one row of the transition table.
type transitionRule struct {
	from   []ClaimStatus
	target ClaimStatus
	// targetFn overrides target for transitions whose result state depends on
	// the claim (resumeAfterProblem).
	targetFn func(*Claim) ClaimStatus
	// anyNonTerminal marks requestCancellation, legal from every non-terminal
	// state outside the cancellation branch.
	anyNonTerminal bool
	// selfTransition marks the one declared in-place edit (updateDraft);
	// every other transition targeting the current state is rejected.
	selfTransition bool
	roles          []ActorRole
	// roleGuard overrides the static role list for stage-dependent
	// authorization (acceptCancellation).
	roleGuard   func(*Claim, ActorRole) bool
	domainGuard func(m *StateMachine, claim *Claim, cmd Command) error
	apply       func(claim *Claim, cmd Command, now time.Time)
	notify      func(claim *Claim, cmd Command) []NotificationIntent
}

var transitions = map[Operation]*transitionRule{
	OpUpdateDraft: {
		from:           []ClaimStatus{StatusDraft},
		target:         StatusDraft,
		selfTransition: true,
		roles:          []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(UpdateDraftCommand)
			claim.ClaimTitle = c.ClaimTitle
			claim.ReportedFailure = c.ReportedFailure
			if c.InitialDiagnosis != "" {
				claim.InitialDiagnosis = c.InitialDiagnosis
			}
		},
	},
	OpCompleteIntake: {
		from:   []ClaimStatus{StatusDraft},
		target: StatusOpen,
		roles:  []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin},
		domainGuard: func(_ *StateMachine, claim *Claim, _ Command) error {
			if claim.Vehicle.ID == "" {
				return &ValidationError{Fields: []string{"vehicle"}}
			}
			return nil
		},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(CompleteIntakeCommand)
			claim.CustomerConsent = c.CustomerConsent
			claim.AppointmentDate = c.AppointmentDate
			tech := c.Technician
			claim.AssignedTechnician = &tech
		},
	},
	OpSubmitDiagnostic: {
		from:        []ClaimStatus{StatusOpen},
		target:      StatusPendingEVMApproval,
		roles:       []ActorRole{RoleSCTechnician, RoleSCStaff, RoleAdmin},
		domainGuard: eligibilityGuard,
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(SubmitDiagnosticCommand)
			claim.DiagnosticDetails = c.DiagnosticDetails
			claim.EstimatedRepairCost = c.EstimatedRepairCost
			claim.EstimatedRepairTimeHours = c.EstimatedRepairTimeHours
			claim.RequiredParts = make([]PartRequirement, len(c.RequiredParts))
			copy(claim.RequiredParts, c.RequiredParts)
		},
		notify: func(claim *Claim, _ Command) []NotificationIntent {
			return []NotificationIntent{
				notifyIntent(claim, AudienceEVMStaff, "claim.diagnostic-submitted", nil),
			}
		},
	},
	OpApprove: {
		from:        []ClaimStatus{StatusPendingEVMApproval},
		target:      StatusEVMApproved,
		roles:       []ActorRole{RoleEVMStaff},
		domainGuard: eligibilityGuard,
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(ApproveCommand)
			claim.WarrantyCost = c.WarrantyCost
			claim.CompanyPaidCost = c.CompanyPaidCost
			claim.ApprovalReason = c.ApprovalReason
		},
		notify: func(claim *Claim, cmd Command) []NotificationIntent {
			c := cmd.(ApproveCommand)
			intents := []NotificationIntent{
				notifyIntent(claim, AudienceServiceCenter, "claim.approved", nil),
			}
			if c.RequiresPartsShipment {
				intents = append(intents, notifyIntent(claim, AudienceLogistics, "claim.parts-shipment", nil))
			}
			return intents
		},
	},
	OpReject: {
		from:   []ClaimStatus{StatusPendingEVMApproval},
		target: StatusEVMRejected,
		roles:  []ActorRole{RoleEVMStaff},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(RejectCommand)
			claim.RejectionReason = c.RejectionReason
		},
		notify: func(claim *Claim, cmd Command) []NotificationIntent {
			c := cmd.(RejectCommand)
			intents := []NotificationIntent{
				notifyIntent(claim, AudienceServiceCenter, "claim.rejected", map[string]string{"reason": c.RejectionReason}),
			}
			if c.NotifyCustomer {
				intents = append(intents, notifyIntent(claim, AudienceCustomer, "claim.rejected", map[string]string{"reason": c.RejectionReason}))
			}
			return intents
		},
	},
	OpMarkReadyForRepair: {
		from:   []ClaimStatus{StatusEVMApproved},
		target: StatusReadyForRepair,
		roles:  []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin},
		domainGuard: func(_ *StateMachine, _ *Claim, cmd Command) error {
			c := cmd.(MarkReadyForRepairCommand)
			if !c.PartsAvailable {
				return &EligibilityBlockedError{Reasons: []string{"parts availability not confirmed by inventory"}}
			}
			return nil
		},
	},
	OpReportProblem:      problemReportRule,
	OpResolveProblem:     problemResolveRule,
	OpResumeAfterProblem: problemResumeRule,
	OpMovePaymentPending: {
		from:   []ClaimStatus{StatusReadyForRepair},
		target: StatusCustomerPaymentPending,
		roles:  []ActorRole{RoleSCStaff, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(MovePaymentPendingCommand)
			claim.FinalCost = c.FinalCost
		},
		notify: func(claim *Claim, _ Command) []NotificationIntent {
			return []NotificationIntent{
				notifyIntent(claim, AudienceCustomer, "claim.payment-requested", nil),
			}
		},
	},
	OpRecordCustomerPaid: {
		from:   []ClaimStatus{StatusCustomerPaymentPending},
		target: StatusCustomerPaid,
		roles:  []ActorRole{RoleSCStaff, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(RecordCustomerPaidCommand)
			claim.PaymentReference = c.PaymentReference
		},
	},
	OpMarkReadyForHandover: {
		from:   []ClaimStatus{StatusCustomerPaid},
		target: StatusReadyForHandover,
		roles:  []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(MarkReadyForHandoverCommand)
			claim.VehicleConditionNotes = c.VehicleConditionNotes
		},
	},
	OpBeginHandover: {
		from:   []ClaimStatus{StatusReadyForHandover},
		target: StatusHandoverPending,
		roles:  []ActorRole{RoleSCStaff, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(BeginHandoverCommand)
			claim.HandoverPersonnel = c.HandoverPersonnel
		},
	},
	OpCompleteClaim: {
		from:   []ClaimStatus{StatusHandoverPending},
		target: StatusClaimDone,
		roles:  []ActorRole{RoleSCStaff, RoleAdmin},
		apply: func(claim *Claim, cmd Command, _ time.Time) {
			c := cmd.(CompleteClaimCommand)
			claim.HandoverNotes = c.HandoverNotes
		},
		notify: func(claim *Claim, _ Command) []NotificationIntent {
			return []NotificationIntent{
				notifyIntent(claim, AudienceCustomer, "claim.completed", nil),
				notifyIntent(claim, AudienceServiceCenter, "claim.archive", nil),
			}
		},
	},
	OpRequestCancellation:     cancellationRequestRule,
	OpAcceptCancellation:      cancellationAcceptRule,
	OpReadyToHandoverCanceled: cancellationReadyRule,
	OpCompleteCancellation:    cancellationCompleteRule,
}

// CreateDraft creates a claim in DRAFT with minimal intake data.
func (m *StateMachine) CreateDraft(actor Actor, cmd CreateDraftCommand, id, claimNumber string) (*Claim, []NotificationIntent, error) {
	if !roleIn(actor.Role, []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin}) {
		return nil, nil, &UnauthorizedError{Role: actor.Role, Operation: OpCreateDraft}
	}
	if fields := cmd.MissingFields(); len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}

	now := m.now()
	claim := &Claim{
		ID:              id,
		ClaimNumber:     claimNumber,
		Status:          StatusDraft,
		Customer:        cmd.Customer,
		Vehicle:         cmd.Vehicle,
		ServiceCenterID: cmd.ServiceCenterID,
		ClaimTitle:      cmd.ClaimTitle,
		ReportedFailure: cmd.ReportedFailure,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	return claim, nil, nil
}

// CreateOpen creates a claim directly in OPEN when the full intake data is
// available at creation time.
func (m *StateMachine) CreateOpen(actor Actor, draft CreateDraftCommand, intake CompleteIntakeCommand, id, claimNumber string) (*Claim, []NotificationIntent, error) {
	claim, _, err := m.CreateDraft(actor, draft, id, claimNumber)
	if err != nil {
		return nil, nil, err
	}
	return m.Apply(claim, actor, intake)
}

// Apply validates and executes one transition. Guards run in order: role,
// required fields, state legality, then domain-specific checks. The first
// failing guard aborts with a typed error and the input claim is never
// mutated; on success a new claim value is returned together with the
// notification intents the transition raises.
func (m *StateMachine) Apply(claim *Claim, actor Actor, cmd Command) (*Claim, []NotificationIntent, error) {
	rule, ok := transitions[cmd.Operation()]
	if !ok {
		return nil, nil, &ValidationError{Fields: []string{"operation"}, Message: fmt.Sprintf("unknown operation %q", cmd.Operation())}
	}

	// Role check.
	if rule.roleGuard != nil {
		if !rule.roleGuard(claim, actor.Role) {
			return nil, nil, &UnauthorizedError{Role: actor.Role, Operation: cmd.Operation()}
		}
	} else if !roleIn(actor.Role, rule.roles) {
		return nil, nil, &UnauthorizedError{Role: actor.Role, Operation: cmd.Operation()}
	}

	// Required-field check. Every offending field is reported, not just the first.
	if fields := cmd.MissingFields(); len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}

	// State check. State authority takes precedence over data completeness
	// and over domain guards: an operation illegal from the current state is
	// always reported as an illegal transition, whatever its payload.
	if !m.legalFrom(rule, claim) {
		return nil, nil, &IllegalTransitionError{CurrentState: claim.Status, Operation: cmd.Operation()}
	}
	target := rule.target
	if rule.targetFn != nil {
		target = rule.targetFn(claim)
	}
	if target == claim.Status && !rule.selfTransition {
		return nil, nil, &IllegalTransitionError{CurrentState: claim.Status, Operation: cmd.Operation()}
	}

	// Domain-specific check (eligibility, parts availability, subflow invariants).
	if rule.domainGuard != nil {
		if err := rule.domainGuard(m, claim, cmd); err != nil {
			return nil, nil, err
		}
	}

	// All guards passed: mutate a clone so the caller's claim stays intact.
	now := m.now()
	updated := claim.Clone()
	if rule.apply != nil {
		rule.apply(updated, cmd, now)
	}
	updated.Status = target
	updated.touch(now)

	var intents []NotificationIntent
	if rule.notify != nil {
		intents = rule.notify(updated, cmd)
	}
	return updated, intents, nil
}

// ValidTransitions returns the operations legal from the given state, for
// clients that render available actions.
func ValidTransitions(status ClaimStatus) []Operation {
	m := &StateMachine{now: time.Now}
	probe := &Claim{Status: status}
	ops := make([]Operation, 0)
	for op, rule := range transitions {
		if m.legalFrom(rule, probe) {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

func (m *StateMachine) legalFrom(rule *transitionRule, claim *Claim) bool {
	if rule.anyNonTerminal {
		return !claim.Status.IsTerminal() && !claim.Status.IsCancellation()
	}
	for _, s := range rule.from {
		if s == claim.Status {
			return true
		}
	}
	return false
}

func eligibilityGuard(m *StateMachine, claim *Claim, _ Command) error {
	if m.eligibility == nil || claim.Vehicle.ID == "" {
		return nil
	}
	eligible, reasons, err := m.eligibility.CheckEligibility(claim.Vehicle.ID, m.now())
	if err != nil {
		return fmt.Errorf("eligibility check: %w", err)
	}
	if !eligible {
		return &EligibilityBlockedError{Reasons: reasons}
	}
	return nil
}

func roleIn(role ActorRole, allowed []ActorRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
