package claims

import "time"

// Cancellation subflow: an overriding branch entered from almost any
// non-terminal state. Once accepted it runs strictly linearly to
// CANCELED_DONE and never re-enters the main flow. The prior state is
// recorded for audit, but no reactivation operation is modeled.

var cancellationRequestRule = &transitionRule{
	anyNonTerminal: true,
	target:         StatusCancelRequested,
	roles:          []ActorRole{RoleCustomer, RoleSCStaff, RoleEVMStaff, RoleAdmin},
	apply: func(claim *Claim, cmd Command, now time.Time) {
		c := cmd.(RequestCancellationCommand)
		claim.CancellationRequest = &CancellationRequest{
			Reason:      c.Reason,
			RequestedBy: c.RequestedBy,
			PriorState:  claim.Status,
			RequestedAt: now,
		}
	},
	notify: func(claim *Claim, _ Command) []NotificationIntent {
		if claim.AssignedTechnician != nil {
			return []NotificationIntent{
				notifyIntent(claim, AudienceTechnician, "claim.cancel-requested", map[string]string{
					"technicianId": claim.AssignedTechnician.ID,
				}),
			}
		}
		return []NotificationIntent{
			notifyIntent(claim, AudienceServiceCenter, "claim.cancel-requested", nil),
		}
	},
}

var cancellationAcceptRule = &transitionRule{
	from:      []ClaimStatus{StatusCancelRequested},
	target:    StatusCanceledPending,
	roleGuard: cancellationStageAuthority,
	apply: func(claim *Claim, _ Command, now time.Time) {
		if claim.CancellationRequest != nil {
			acceptedAt := now
			claim.CancellationRequest.AcceptedAt = &acceptedAt
		}
	},
}

var cancellationReadyRule = &transitionRule{
	from:   []ClaimStatus{StatusCanceledPending},
	target: StatusCanceledReadyToHandover,
	roles:  []ActorRole{RoleSCStaff, RoleAdmin},
	domainGuard: func(_ *StateMachine, _ *Claim, cmd Command) error {
		c := cmd.(ReadyToHandoverCanceledCommand)
		if !c.ReturnLogisticsConfirmed {
			return &EligibilityBlockedError{Reasons: []string{"vehicle return logistics not confirmed"}}
		}
		return nil
	},
}

var cancellationCompleteRule = &transitionRule{
	from:   []ClaimStatus{StatusCanceledReadyToHandover},
	target: StatusCanceledDone,
	roles:  []ActorRole{RoleSCStaff, RoleAdmin},
	apply: func(claim *Claim, cmd Command, _ time.Time) {
		c := cmd.(CompleteCancellationCommand)
		claim.HandoverNotes = c.HandoverNotes
	},
	notify: func(claim *Claim, _ Command) []NotificationIntent {
		return []NotificationIntent{
			notifyIntent(claim, AudienceCustomer, "claim.canceled", nil),
		}
	},
}

// cancellationStageAuthority decides who may accept a cancellation based on
// the stage the claim was in when cancellation was requested: the OEM owns
// claims sitting in its approval queue, the service center owns everything
// else. Admin may always accept.
func cancellationStageAuthority(claim *Claim, role ActorRole) bool {
	if role == RoleAdmin {
		return true
	}
	prior := ClaimStatus("")
	if claim.CancellationRequest != nil {
		prior = claim.CancellationRequest.PriorState
	}
	switch prior {
	case StatusPendingEVMApproval, StatusEVMApproved:
		return role == RoleEVMStaff
	default:
		return role == RoleSCStaff || role == RoleEVMStaff
	}
}
