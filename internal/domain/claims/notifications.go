package claims

// Audience names who a notification intent targets.
type Audience string

const (
	AudienceCustomer      Audience = "customer"
	AudienceServiceCenter Audience = "service_center"
	AudienceEVMStaff      Audience = "evm_staff"
	AudienceLogistics     Audience = "logistics"
	AudienceTechnician    Audience = "technician"
)

// NotificationIntent is an advisory output value returned by a transition.
// The caller's notification port delivers it asynchronously with
// at-least-once, best-effort semantics; a delivery failure never rolls back
// the committed transition.
type NotificationIntent struct {
	Audience    Audience          `json:"audience"`
	Template    string            `json:"template"`
	ClaimID     string            `json:"claimId"`
	ClaimNumber string            `json:"claimNumber"`
	Params      map[string]string `json:"params,omitempty"`
}

func notifyIntent(claim *Claim, audience Audience, template string, params map[string]string) NotificationIntent {
	return NotificationIntent{
		Audience:    audience,
		Template:    template,
		ClaimID:     claim.ID,
		ClaimNumber: claim.ClaimNumber,
		Params:      params,
	}
}
