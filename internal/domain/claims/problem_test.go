package claims

import (
	"errors"
	"testing"
)

func TestProblemRoundTripFromRepair(t *testing.T) {
	m := testMachine()
	technician := Actor{ID: "tech-1", Role: RoleSCTechnician}
	staff := Actor{ID: "staff-1", Role: RoleSCStaff}

	claim := claimInStatus(StatusReadyForRepair)

	reported, intents, err := m.Apply(claim, technician, ReportProblemCommand{
		ProblemType:             ProblemPartsShortage,
		Description:             "Coolant pump out of stock nationwide",
		MissingPartSerials:      []string{"CP-88-1923"},
		EstimatedResolutionDays: 7,
	})
	if err != nil {
		t.Fatalf("reportProblem failed: %v", err)
	}
	if reported.Status != StatusProblemConflict {
		t.Fatalf("expected PROBLEM_CONFLICT, got %s", reported.Status)
	}
	if reported.ProblemReport == nil || reported.ProblemReport.PriorState != StatusReadyForRepair {
		t.Fatalf("prior state not captured: %+v", reported.ProblemReport)
	}
	if len(intents) != 1 || intents[0].Audience != AudienceEVMStaff {
		t.Fatalf("parts shortage should notify EVM staff, got %v", intents)
	}

	solved, _, err := m.Apply(reported, staff, ResolveProblemCommand{
		ProblemType:     ProblemPartsShortage,
		ResolutionNotes: "Pump shipped from central depot",
	})
	if err != nil {
		t.Fatalf("resolveProblem failed: %v", err)
	}
	if solved.Status != StatusProblemSolved {
		t.Fatalf("expected PROBLEM_SOLVED, got %s", solved.Status)
	}
	if solved.ProblemReport.ResolvedAt == nil {
		t.Fatal("resolution timestamp not recorded")
	}

	resumed, _, err := m.Apply(solved, staff, ResumeAfterProblemCommand{})
	if err != nil {
		t.Fatalf("resumeAfterProblem failed: %v", err)
	}
	if resumed.Status != StatusReadyForRepair {
		t.Fatalf("expected resume to READY_FOR_REPAIR, got %s", resumed.Status)
	}
	if resumed.ProblemReport != nil {
		t.Fatal("problem report must be cleared after resume")
	}
}

func TestProblemResumeReturnsToOpen(t *testing.T) {
	m := testMachine()
	technician := Actor{ID: "tech-1", Role: RoleSCTechnician}
	staff := Actor{ID: "staff-1", Role: RoleSCStaff}

	claim := claimInStatus(StatusOpen)
	reported, _, err := m.Apply(claim, technician, ReportProblemCommand{
		ProblemType: ProblemCustomerIssue,
		Description: "Customer disputes the reported failure",
	})
	if err != nil {
		t.Fatalf("reportProblem failed: %v", err)
	}

	solved, _, err := m.Apply(reported, staff, ResolveProblemCommand{
		ProblemType:     ProblemCustomerIssue,
		ResolutionNotes: "Clarified with customer by phone",
	})
	if err != nil {
		t.Fatalf("resolveProblem failed: %v", err)
	}

	resumed, _, err := m.Apply(solved, staff, ResumeAfterProblemCommand{})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.Status != StatusOpen {
		t.Fatalf("expected resume to OPEN, got %s", resumed.Status)
	}
}

func TestResolveProblemRejectsMismatchedType(t *testing.T) {
	m := testMachine()
	claim := claimInStatus(StatusProblemConflict) // open report is PARTS_SHORTAGE

	_, _, err := m.Apply(claim, Actor{ID: "staff-1", Role: RoleSCStaff}, ResolveProblemCommand{
		ProblemType:     ProblemWrongDiagnosis,
		ResolutionNotes: "Re-diagnosed the fault",
	})

	var blocked *EligibilityBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected EligibilityBlockedError on type mismatch, got %v", err)
	}
}

func TestResolveProblemRejectsMissingReport(t *testing.T) {
	m := testMachine()
	claim := claimInStatus(StatusProblemConflict)
	claim.ProblemReport = nil

	_, _, err := m.Apply(claim, Actor{ID: "staff-1", Role: RoleSCStaff}, ResolveProblemCommand{
		ProblemType:     ProblemPartsShortage,
		ResolutionNotes: "Pump shipped from central depot",
	})
	if !IsEligibilityBlocked(err) {
		t.Fatalf("expected EligibilityBlocked without an open report, got %v", err)
	}
}

func TestProblemNotificationRouting(t *testing.T) {
	m := testMachine()
	technician := Actor{ID: "tech-1", Role: RoleSCTechnician}

	cases := []struct {
		problemType ProblemType
		audiences   []Audience
	}{
		{ProblemPartsShortage, []Audience{AudienceEVMStaff}},
		{ProblemWrongDiagnosis, []Audience{AudienceEVMStaff}},
		{ProblemCustomerIssue, []Audience{AudienceServiceCenter}},
		{ProblemOther, []Audience{AudienceServiceCenter, AudienceEVMStaff}},
	}

	for _, tc := range cases {
		claim := claimInStatus(StatusOpen)
		_, intents, err := m.Apply(claim, technician, ReportProblemCommand{
			ProblemType: tc.problemType,
			Description: "A sufficiently long description",
		})
		if err != nil {
			t.Fatalf("%s: reportProblem failed: %v", tc.problemType, err)
		}
		if len(intents) != len(tc.audiences) {
			t.Fatalf("%s: expected %d intents, got %v", tc.problemType, len(tc.audiences), intents)
		}
		for i, audience := range tc.audiences {
			if intents[i].Audience != audience {
				t.Errorf("%s: intent %d routed to %s, want %s", tc.problemType, i, intents[i].Audience, audience)
			}
		}
	}
}
