package claims

import "time"

// Problem/conflict subflow: PROBLEM_CONFLICT → PROBLEM_SOLVED → resume.
// The pre-problem state is captured when the problem is reported so the
// resume transition can return the claim exactly where the main flow was
// interrupted.

var problemReportRule = &transitionRule{
	from:   []ClaimStatus{StatusOpen, StatusReadyForRepair},
	target: StatusProblemConflict,
	roles:  []ActorRole{RoleSCTechnician, RoleSCStaff, RoleAdmin},
	apply: func(claim *Claim, cmd Command, now time.Time) {
		c := cmd.(ReportProblemCommand)
		serials := make([]string, len(c.MissingPartSerials))
		copy(serials, c.MissingPartSerials)
		claim.ProblemReport = &ProblemReport{
			ProblemType:             c.ProblemType,
			Description:             c.Description,
			MissingPartSerials:      serials,
			EstimatedResolutionDays: c.EstimatedResolutionDays,
			PriorState:              claim.Status,
			ReportedAt:              now,
		}
	},
	notify: func(claim *Claim, cmd Command) []NotificationIntent {
		c := cmd.(ReportProblemCommand)
		params := map[string]string{"problemType": string(c.ProblemType)}
		switch c.ProblemType {
		case ProblemPartsShortage, ProblemWrongDiagnosis:
			return []NotificationIntent{
				notifyIntent(claim, AudienceEVMStaff, "claim.problem-reported", params),
			}
		case ProblemCustomerIssue:
			return []NotificationIntent{
				notifyIntent(claim, AudienceServiceCenter, "claim.problem-reported", params),
			}
		default:
			return []NotificationIntent{
				notifyIntent(claim, AudienceServiceCenter, "claim.problem-reported", params),
				notifyIntent(claim, AudienceEVMStaff, "claim.problem-reported", params),
			}
		}
	},
}

var problemResolveRule = &transitionRule{
	from:   []ClaimStatus{StatusProblemConflict},
	target: StatusProblemSolved,
	roles:  []ActorRole{RoleSCStaff, RoleEVMStaff, RoleAdmin},
	domainGuard: func(_ *StateMachine, claim *Claim, cmd Command) error {
		c := cmd.(ResolveProblemCommand)
		if claim.ProblemReport == nil {
			return &EligibilityBlockedError{Reasons: []string{"no open problem report to resolve"}}
		}
		// The resolution must reference the problem that was reported.
		if claim.ProblemReport.ProblemType != c.ProblemType {
			return &EligibilityBlockedError{Reasons: []string{
				"resolution references problem type " + string(c.ProblemType) +
					" but the open report is " + string(claim.ProblemReport.ProblemType),
			}}
		}
		return nil
	},
	apply: func(claim *Claim, cmd Command, now time.Time) {
		c := cmd.(ResolveProblemCommand)
		claim.ProblemReport.ResolutionNotes = c.ResolutionNotes
		resolvedAt := now
		claim.ProblemReport.ResolvedAt = &resolvedAt
	},
}

var problemResumeRule = &transitionRule{
	from: []ClaimStatus{StatusProblemSolved},
	targetFn: func(claim *Claim) ClaimStatus {
		if claim.ProblemReport != nil {
			return claim.ProblemReport.PriorState
		}
		return StatusOpen
	},
	roles: []ActorRole{RoleSCStaff, RoleSCTechnician, RoleAdmin},
	domainGuard: func(_ *StateMachine, claim *Claim, _ Command) error {
		if claim.ProblemReport == nil || claim.ProblemReport.PriorState == "" {
			return &EligibilityBlockedError{Reasons: []string{"no prior state recorded for resume"}}
		}
		return nil
	},
	apply: func(claim *Claim, _ Command, _ time.Time) {
		// The problem sub-record exists only while the claim is in a problem
		// state.
		claim.ProblemReport = nil
	},
}
