package claims

import (
	"strconv"
	"time"
)

// Operation names a state machine transition.
type Operation string

const (
	OpCreateDraft             Operation = "createDraft"
	OpUpdateDraft             Operation = "updateDraft"
	OpCompleteIntake          Operation = "completeIntake"
	OpSubmitDiagnostic        Operation = "submitDiagnostic"
	OpApprove                 Operation = "approve"
	OpReject                  Operation = "reject"
	OpMarkReadyForRepair      Operation = "markReadyForRepair"
	OpReportProblem           Operation = "reportProblem"
	OpResolveProblem          Operation = "resolveProblem"
	OpResumeAfterProblem      Operation = "resumeAfterProblem"
	OpMovePaymentPending      Operation = "movePaymentPending"
	OpRecordCustomerPaid      Operation = "recordCustomerPaid"
	OpMarkReadyForHandover    Operation = "markReadyForHandover"
	OpBeginHandover           Operation = "beginHandover"
	OpCompleteClaim           Operation = "completeClaim"
	OpRequestCancellation     Operation = "requestCancellation"
	OpAcceptCancellation      Operation = "acceptCancellation"
	OpReadyToHandoverCanceled Operation = "readyToHandoverCanceled"
	OpCompleteCancellation    Operation = "completeCancellation"
)

// Command is one strongly-typed transition payload. Every operation has its
// own command variant with its own validation rules; there is no loosely
// typed "claim update" object.
type Command interface {
	// Operation identifies the transition this command drives.
	Operation() Operation
	// MissingFields returns the names of every missing or invalid required
	// field, empty when the payload is structurally valid.
	MissingFields() []string
}

// CreateDraftCommand opens a claim with minimal intake data.
type CreateDraftCommand struct {
	ClaimTitle      string      `json:"claimTitle"`
	ReportedFailure string      `json:"reportedFailure"`
	Customer        CustomerRef `json:"customer"`
	Vehicle         VehicleRef  `json:"vehicle"`
	ServiceCenterID string      `json:"serviceCenterId,omitempty"`
}

func (c CreateDraftCommand) Operation() Operation { return OpCreateDraft }

func (c CreateDraftCommand) MissingFields() []string {
	var fields []string
	if c.Customer.ID == "" {
		fields = append(fields, "customer.id")
	}
	if c.Vehicle.ID == "" {
		fields = append(fields, "vehicle.id")
	}
	return fields
}

// UpdateDraftCommand edits a draft in place without leaving DRAFT.
type UpdateDraftCommand struct {
	ClaimTitle       string `json:"claimTitle"`
	ReportedFailure  string `json:"reportedFailure"`
	InitialDiagnosis string `json:"initialDiagnosis,omitempty"`
}

func (c UpdateDraftCommand) Operation() Operation { return OpUpdateDraft }

func (c UpdateDraftCommand) MissingFields() []string {
	var fields []string
	if c.ClaimTitle == "" {
		fields = append(fields, "claimTitle")
	}
	if c.ReportedFailure == "" {
		fields = append(fields, "reportedFailure")
	}
	return fields
}

// CompleteIntakeCommand moves a draft into the open intake-complete state.
type CompleteIntakeCommand struct {
	CustomerConsent bool          `json:"customerConsent"`
	AppointmentDate *time.Time    `json:"appointmentDate"`
	Technician      TechnicianRef `json:"technician"`
}

func (c CompleteIntakeCommand) Operation() Operation { return OpCompleteIntake }

func (c CompleteIntakeCommand) MissingFields() []string {
	var fields []string
	if !c.CustomerConsent {
		fields = append(fields, "customerConsent")
	}
	if c.AppointmentDate == nil {
		fields = append(fields, "appointmentDate")
	}
	if c.Technician.ID == "" {
		fields = append(fields, "technician.id")
	}
	return fields
}

// SubmitDiagnosticCommand sends the technician's diagnosis for OEM approval.
type SubmitDiagnosticCommand struct {
	DiagnosticDetails        string            `json:"diagnosticDetails"`
	EstimatedRepairCost      int64             `json:"estimatedRepairCost"`
	EstimatedRepairTimeHours int               `json:"estimatedRepairTimeHours"`
	RequiredParts            []PartRequirement `json:"requiredParts"`
}

func (c SubmitDiagnosticCommand) Operation() Operation { return OpSubmitDiagnostic }

func (c SubmitDiagnosticCommand) MissingFields() []string {
	var fields []string
	if c.DiagnosticDetails == "" {
		fields = append(fields, "diagnosticDetails")
	}
	if c.EstimatedRepairCost <= 0 {
		fields = append(fields, "estimatedRepairCost")
	}
	if c.EstimatedRepairTimeHours <= 0 {
		fields = append(fields, "estimatedRepairTimeHours")
	}
	for i, part := range c.RequiredParts {
		if part.PartID <= 0 {
			fields = append(fields, indexedField("requiredParts", i, "partId"))
		}
		if part.Quantity <= 0 {
			fields = append(fields, indexedField("requiredParts", i, "quantity"))
		}
	}
	return fields
}

// ApproveCommand records the OEM's warranty cost approval.
type ApproveCommand struct {
	WarrantyCost          int64  `json:"warrantyCost"`
	CompanyPaidCost       int64  `json:"companyPaidCost,omitempty"`
	ApprovalReason        string `json:"approvalReason"`
	RequiresPartsShipment bool   `json:"requiresPartsShipment,omitempty"`
}

func (c ApproveCommand) Operation() Operation { return OpApprove }

func (c ApproveCommand) MissingFields() []string {
	var fields []string
	if c.WarrantyCost <= 0 {
		fields = append(fields, "warrantyCost")
	}
	if c.ApprovalReason == "" {
		fields = append(fields, "approvalReason")
	}
	return fields
}

// RejectCommand records the OEM's rejection.
type RejectCommand struct {
	RejectionReason string `json:"rejectionReason"`
	NotifyCustomer  bool   `json:"notifyCustomer,omitempty"`
}

func (c RejectCommand) Operation() Operation { return OpReject }

func (c RejectCommand) MissingFields() []string {
	if c.RejectionReason == "" {
		return []string{"rejectionReason"}
	}
	return nil
}

// MarkReadyForRepairCommand confirms parts availability and queues the repair.
type MarkReadyForRepairCommand struct {
	// PartsAvailable reflects the external inventory check; the check itself
	// is not modeled here.
	PartsAvailable bool `json:"partsAvailable"`
}

func (c MarkReadyForRepairCommand) Operation() Operation { return OpMarkReadyForRepair }

func (c MarkReadyForRepairCommand) MissingFields() []string { return nil }

// ReportProblemCommand raises the mid-repair problem/conflict branch.
type ReportProblemCommand struct {
	ProblemType             ProblemType `json:"problemType"`
	Description             string      `json:"description"`
	MissingPartSerials      []string    `json:"missingPartSerials,omitempty"`
	EstimatedResolutionDays int         `json:"estimatedResolutionDays,omitempty"`
}

func (c ReportProblemCommand) Operation() Operation { return OpReportProblem }

func (c ReportProblemCommand) MissingFields() []string {
	var fields []string
	if !IsValidProblemType(c.ProblemType) {
		fields = append(fields, "problemType")
	}
	if len([]rune(c.Description)) < minProblemDescriptionLen {
		fields = append(fields, "description")
	}
	return fields
}

// ResolveProblemCommand records the resolution of the open problem.
type ResolveProblemCommand struct {
	ProblemType     ProblemType `json:"problemType"`
	ResolutionNotes string      `json:"resolutionNotes"`
}

func (c ResolveProblemCommand) Operation() Operation { return OpResolveProblem }

func (c ResolveProblemCommand) MissingFields() []string {
	var fields []string
	if !IsValidProblemType(c.ProblemType) {
		fields = append(fields, "problemType")
	}
	if c.ResolutionNotes == "" {
		fields = append(fields, "resolutionNotes")
	}
	return fields
}

// ResumeAfterProblemCommand returns the claim to its pre-problem state.
type ResumeAfterProblemCommand struct{}

func (c ResumeAfterProblemCommand) Operation() Operation { return OpResumeAfterProblem }

func (c ResumeAfterProblemCommand) MissingFields() []string { return nil }

// MovePaymentPendingCommand fixes the final cost and asks the customer to pay.
type MovePaymentPendingCommand struct {
	FinalCost int64 `json:"finalCost"`
}

func (c MovePaymentPendingCommand) Operation() Operation { return OpMovePaymentPending }

func (c MovePaymentPendingCommand) MissingFields() []string {
	if c.FinalCost <= 0 {
		return []string{"finalCost"}
	}
	return nil
}

// RecordCustomerPaidCommand records the customer payment confirmation.
type RecordCustomerPaidCommand struct {
	PaymentReference string `json:"paymentReference"`
}

func (c RecordCustomerPaidCommand) Operation() Operation { return OpRecordCustomerPaid }

func (c RecordCustomerPaidCommand) MissingFields() []string {
	if c.PaymentReference == "" {
		return []string{"paymentReference"}
	}
	return nil
}

// MarkReadyForHandoverCommand records the vehicle condition after repair.
type MarkReadyForHandoverCommand struct {
	VehicleConditionNotes string `json:"vehicleConditionNotes"`
}

func (c MarkReadyForHandoverCommand) Operation() Operation { return OpMarkReadyForHandover }

func (c MarkReadyForHandoverCommand) MissingFields() []string {
	if c.VehicleConditionNotes == "" {
		return []string{"vehicleConditionNotes"}
	}
	return nil
}

// BeginHandoverCommand assigns handover personnel and starts the handover.
type BeginHandoverCommand struct {
	HandoverPersonnel string `json:"handoverPersonnel"`
}

func (c BeginHandoverCommand) Operation() Operation { return OpBeginHandover }

func (c BeginHandoverCommand) MissingFields() []string {
	if c.HandoverPersonnel == "" {
		return []string{"handoverPersonnel"}
	}
	return nil
}

// CompleteClaimCommand closes the claim after the vehicle is handed back.
type CompleteClaimCommand struct {
	HandoverNotes string `json:"handoverNotes"`
}

func (c CompleteClaimCommand) Operation() Operation { return OpCompleteClaim }

func (c CompleteClaimCommand) MissingFields() []string {
	if c.HandoverNotes == "" {
		return []string{"handoverNotes"}
	}
	return nil
}

// RequestCancellationCommand enters the cancellation branch.
type RequestCancellationCommand struct {
	Reason      string `json:"reason"`
	RequestedBy string `json:"requestedBy"`
}

func (c RequestCancellationCommand) Operation() Operation { return OpRequestCancellation }

func (c RequestCancellationCommand) MissingFields() []string {
	if c.Reason == "" {
		return []string{"reason"}
	}
	return nil
}

// AcceptCancellationCommand confirms the cancellation for the current stage.
type AcceptCancellationCommand struct{}

func (c AcceptCancellationCommand) Operation() Operation { return OpAcceptCancellation }

func (c AcceptCancellationCommand) MissingFields() []string { return nil }

// ReadyToHandoverCanceledCommand confirms vehicle return logistics.
type ReadyToHandoverCanceledCommand struct {
	ReturnLogisticsConfirmed bool `json:"returnLogisticsConfirmed"`
}

func (c ReadyToHandoverCanceledCommand) Operation() Operation { return OpReadyToHandoverCanceled }

func (c ReadyToHandoverCanceledCommand) MissingFields() []string { return nil }

// CompleteCancellationCommand closes the cancellation branch.
type CompleteCancellationCommand struct {
	HandoverNotes string `json:"handoverNotes"`
}

func (c CompleteCancellationCommand) Operation() Operation { return OpCompleteCancellation }

func (c CompleteCancellationCommand) MissingFields() []string {
	if c.HandoverNotes == "" {
		return []string{"handoverNotes"}
	}
	return nil
}

const minProblemDescriptionLen = 10

func indexedField(list string, index int, field string) string {
	return list + "[" + strconv.Itoa(index) + "]." + field
}
