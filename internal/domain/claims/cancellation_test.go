package claims

import (
	"testing"
)

func TestCancellationLinearFlow(t *testing.T) {
	m := testMachine()
	customer := Actor{ID: "cust-1", Role: RoleCustomer}
	staff := Actor{ID: "staff-1", Role: RoleSCStaff}

	claim := claimInStatus(StatusReadyForRepair)

	requested, intents, err := m.Apply(claim, customer, RequestCancellationCommand{
		Reason:      "Customer sold the vehicle",
		RequestedBy: "cust-1",
	})
	if err != nil {
		t.Fatalf("requestCancellation failed: %v", err)
	}
	if requested.Status != StatusCancelRequested {
		t.Fatalf("expected CANCEL_REQUESTED, got %s", requested.Status)
	}
	if requested.CancellationRequest == nil || requested.CancellationRequest.PriorState != StatusReadyForRepair {
		t.Fatalf("prior state not recorded: %+v", requested.CancellationRequest)
	}
	if len(intents) != 1 || intents[0].Audience != AudienceTechnician {
		t.Fatalf("expected assigned technician to be notified, got %v", intents)
	}

	accepted, _, err := m.Apply(requested, staff, AcceptCancellationCommand{})
	if err != nil {
		t.Fatalf("acceptCancellation failed: %v", err)
	}
	if accepted.Status != StatusCanceledPending {
		t.Fatalf("expected CANCELED_PENDING, got %s", accepted.Status)
	}
	if accepted.CancellationRequest.AcceptedAt == nil {
		t.Fatal("acceptance timestamp not recorded")
	}

	ready, _, err := m.Apply(accepted, staff, ReadyToHandoverCanceledCommand{ReturnLogisticsConfirmed: true})
	if err != nil {
		t.Fatalf("readyToHandoverCanceled failed: %v", err)
	}
	if ready.Status != StatusCanceledReadyToHandover {
		t.Fatalf("expected CANCELED_READY_TO_HANDOVER, got %s", ready.Status)
	}

	done, intents, err := m.Apply(ready, staff, CompleteCancellationCommand{HandoverNotes: "Vehicle returned unrepaired"})
	if err != nil {
		t.Fatalf("completeCancellation failed: %v", err)
	}
	if done.Status != StatusCanceledDone {
		t.Fatalf("expected CANCELED_DONE, got %s", done.Status)
	}
	if len(intents) != 1 || intents[0].Audience != AudienceCustomer {
		t.Fatalf("expected customer notification, got %v", intents)
	}
	if !done.IsTerminal() {
		t.Fatal("CANCELED_DONE must be terminal")
	}
}

func TestCancellationCannotReenterMainFlow(t *testing.T) {
	m := testMachine()

	claim := claimInStatus(StatusCanceledPending)
	for _, op := range []Operation{OpSubmitDiagnostic, OpMarkReadyForRepair, OpMovePaymentPending, OpResumeAfterProblem} {
		cmd, actor := validCommand(op)
		if _, _, err := m.Apply(claim, actor, cmd); !IsIllegalTransition(err) {
			t.Errorf("%s from CANCELED_PENDING: expected IllegalTransition, got %v", op, err)
		}
	}
}

func TestRequestCancellationRejectedFromTerminalAndCancellation(t *testing.T) {
	m := testMachine()
	cmd, actor := validCommand(OpRequestCancellation)

	for _, status := range []ClaimStatus{
		StatusClaimDone, StatusCanceledDone, StatusEVMRejected,
		StatusCancelRequested, StatusCanceledPending, StatusCanceledReadyToHandover,
	} {
		claim := claimInStatus(status)
		if _, _, err := m.Apply(claim, actor, cmd); !IsIllegalTransition(err) {
			t.Errorf("requestCancellation from %s: expected IllegalTransition, got %v", status, err)
		}
	}
}

func TestRequestCancellationRequiresReason(t *testing.T) {
	m := testMachine()
	claim := claimInStatus(StatusOpen)

	_, _, err := m.Apply(claim, Actor{ID: "cust-1", Role: RoleCustomer}, RequestCancellationCommand{})
	if !IsValidationFailed(err) {
		t.Fatalf("expected ValidationFailed without reason, got %v", err)
	}
}

func TestAcceptCancellationStageAuthority(t *testing.T) {
	m := testMachine()

	// Cancellation requested while the claim sat in the OEM approval queue:
	// only EVM staff may accept.
	claim := claimInStatus(StatusCancelRequested)
	claim.CancellationRequest.PriorState = StatusPendingEVMApproval

	_, _, err := m.Apply(claim, Actor{ID: "staff-1", Role: RoleSCStaff}, AcceptCancellationCommand{})
	if !IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for SC staff, got %v", err)
	}

	accepted, _, err := m.Apply(claim, Actor{ID: "evm-1", Role: RoleEVMStaff}, AcceptCancellationCommand{})
	if err != nil {
		t.Fatalf("EVM staff accept failed: %v", err)
	}
	if accepted.Status != StatusCanceledPending {
		t.Fatalf("expected CANCELED_PENDING, got %s", accepted.Status)
	}

	// Requested from a service-center stage: SC staff may accept.
	claim = claimInStatus(StatusCancelRequested)
	claim.CancellationRequest.PriorState = StatusReadyForRepair
	if _, _, err := m.Apply(claim, Actor{ID: "staff-1", Role: RoleSCStaff}, AcceptCancellationCommand{}); err != nil {
		t.Fatalf("SC staff accept failed: %v", err)
	}

	// Customers never accept cancellations.
	if _, _, err := m.Apply(claim, Actor{ID: "cust-1", Role: RoleCustomer}, AcceptCancellationCommand{}); !IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for customer, got %v", err)
	}
}

func TestReadyToHandoverCanceledRequiresLogistics(t *testing.T) {
	m := testMachine()
	claim := claimInStatus(StatusCanceledPending)

	_, _, err := m.Apply(claim, Actor{ID: "staff-1", Role: RoleSCStaff}, ReadyToHandoverCanceledCommand{})
	if !IsEligibilityBlocked(err) {
		t.Fatalf("expected EligibilityBlocked without logistics confirmation, got %v", err)
	}
}
