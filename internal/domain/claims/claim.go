package claims

import (
	"fmt"
	"time"
)

// CustomerRef is a denormalized snapshot of the owning customer record.
// The claim displays it but does not own it.
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// VehicleRef is a denormalized snapshot of the vehicle under repair.
type VehicleRef struct {
	ID    string `json:"id"`
	VIN   string `json:"vin"`
	Model string `json:"model"`
}

// TechnicianRef references the technician assigned to the claim.
type TechnicianRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PartRequirement is one entry of the ordered parts list set during diagnosis.
type PartRequirement struct {
	PartID   int64  `json:"partId"`
	PartName string `json:"partName"`
	Quantity int    `json:"quantity"`
}

// Attachment holds metadata for an externally stored file.
type Attachment struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	StorageKey string    `json:"storageKey"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ProblemReport is present only while the claim sits in a problem state.
// PriorState records where the main flow was interrupted so resolution can
// return the claim there.
type ProblemReport struct {
	ProblemType             ProblemType `json:"problemType"`
	Description             string      `json:"description"`
	MissingPartSerials      []string    `json:"missingPartSerials,omitempty"`
	EstimatedResolutionDays int         `json:"estimatedResolutionDays,omitempty"`
	PriorState              ClaimStatus `json:"priorState"`
	ReportedAt              time.Time   `json:"reportedAt"`
	ResolutionNotes         string      `json:"resolutionNotes,omitempty"`
	ResolvedAt              *time.Time  `json:"resolvedAt,omitempty"`
}

// CancellationRequest is present only while the claim sits in a cancellation
// state. PriorState is recorded for audit; no reactivation path is modeled.
type CancellationRequest struct {
	Reason      string      `json:"reason"`
	RequestedBy string      `json:"requestedBy"`
	PriorState  ClaimStatus `json:"priorState"`
	RequestedAt time.Time   `json:"requestedAt"`
	AcceptedAt  *time.Time  `json:"acceptedAt,omitempty"`
}

// Claim is the central aggregate: a warranty repair request tracked from
// intake to completion or cancellation. It is mutated exclusively through
// state machine transitions; no field outside a transition's declared
// write-set changes during that transition.
type Claim struct {
	ID          string      `json:"id"`
	ClaimNumber string      `json:"claimNumber"`
	Status      ClaimStatus `json:"status"`

	Customer CustomerRef `json:"customer"`
	Vehicle  VehicleRef  `json:"vehicle"`

	ServiceCenterID string `json:"serviceCenterId,omitempty"`

	ClaimTitle        string `json:"claimTitle"`
	ReportedFailure   string `json:"reportedFailure"`
	InitialDiagnosis  string `json:"initialDiagnosis,omitempty"`
	DiagnosticDetails string `json:"diagnosticDetails,omitempty"`

	RequiredParts            []PartRequirement `json:"requiredParts,omitempty"`
	EstimatedRepairCost      int64             `json:"estimatedRepairCost,omitempty"`
	EstimatedRepairTimeHours int               `json:"estimatedRepairTimeHours,omitempty"`
	WarrantyCost             int64             `json:"warrantyCost,omitempty"`
	CompanyPaidCost          int64             `json:"companyPaidCost,omitempty"`
	FinalCost                int64             `json:"finalCost,omitempty"`

	ApprovalReason  string `json:"approvalReason,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	AssignedTechnician *TechnicianRef `json:"assignedTechnician,omitempty"`
	AppointmentDate    *time.Time     `json:"appointmentDate,omitempty"`
	CustomerConsent    bool           `json:"customerConsent"`

	PaymentReference      string `json:"paymentReference,omitempty"`
	VehicleConditionNotes string `json:"vehicleConditionNotes,omitempty"`
	HandoverPersonnel     string `json:"handoverPersonnel,omitempty"`
	HandoverNotes         string `json:"handoverNotes,omitempty"`

	ProblemReport       *ProblemReport       `json:"problemReport,omitempty"`
	CancellationRequest *CancellationRequest `json:"cancellationRequest,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version supports optimistic concurrency control at the storage layer.
	Version int `json:"version"`
}

// FormatClaimNumber renders the human-facing claim number for a yearly sequence.
func FormatClaimNumber(year int, seq int64) string {
	return fmt.Sprintf("WC-%04d-%06d", year, seq)
}

// IsTerminal returns true if the claim reached a terminal state.
func (c *Claim) IsTerminal() bool {
	return c.Status.IsTerminal()
}

// Clone returns a deep copy of the claim. Transitions mutate a clone so a
// failed guard leaves the caller's claim untouched.
func (c *Claim) Clone() *Claim {
	cp := *c

	if c.RequiredParts != nil {
		cp.RequiredParts = make([]PartRequirement, len(c.RequiredParts))
		copy(cp.RequiredParts, c.RequiredParts)
	}
	if c.Attachments != nil {
		cp.Attachments = make([]Attachment, len(c.Attachments))
		copy(cp.Attachments, c.Attachments)
	}
	if c.AssignedTechnician != nil {
		tech := *c.AssignedTechnician
		cp.AssignedTechnician = &tech
	}
	if c.AppointmentDate != nil {
		d := *c.AppointmentDate
		cp.AppointmentDate = &d
	}
	if c.ProblemReport != nil {
		pr := *c.ProblemReport
		if c.ProblemReport.MissingPartSerials != nil {
			pr.MissingPartSerials = make([]string, len(c.ProblemReport.MissingPartSerials))
			copy(pr.MissingPartSerials, c.ProblemReport.MissingPartSerials)
		}
		if c.ProblemReport.ResolvedAt != nil {
			ts := *c.ProblemReport.ResolvedAt
			pr.ResolvedAt = &ts
		}
		cp.ProblemReport = &pr
	}
	if c.CancellationRequest != nil {
		cr := *c.CancellationRequest
		if c.CancellationRequest.AcceptedAt != nil {
			ts := *c.CancellationRequest.AcceptedAt
			cr.AcceptedAt = &ts
		}
		cp.CancellationRequest = &cr
	}

	return &cp
}

// touch bumps the version and update timestamp after a successful transition.
func (c *Claim) touch(now time.Time) {
	c.UpdatedAt = now
	c.Version++
}
