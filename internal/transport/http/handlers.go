package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/claims"
	appWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/warranty"
	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
	domainWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/warranty"
	infraClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/claims"
)

// ClaimHandler serves the claim lifecycle endpoints.
type ClaimHandler struct {
	service *appClaims.ClaimService
	logger  *zap.Logger
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(service *appClaims.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{service: service, logger: logger}
}

type createClaimRequest struct {
	domainClaims.CreateDraftCommand
	// Intake, when present, runs intake immediately and lands the claim in
	// OPEN instead of DRAFT.
	Intake *domainClaims.CompleteIntakeCommand `json:"intake,omitempty"`
}

// Create handles POST /claims.
func (h *ClaimHandler) Create(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	actor := CurrentActor(c)

	var (
		claim *domainClaims.Claim
		err   error
	)
	if req.Intake != nil {
		claim, err = h.service.CreateOpen(c.Request.Context(), actor, req.CreateDraftCommand, *req.Intake)
	} else {
		claim, err = h.service.CreateDraft(c.Request.Context(), actor, req.CreateDraftCommand)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// Get handles GET /claims/:id.
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// List handles GET /claims.
func (h *ClaimHandler) List(c *gin.Context) {
	filter := infraClaims.ListFilter{
		TechnicianID:    c.Query("technicianId"),
		ServiceCenterID: c.Query("serviceCenterId"),
	}
	if status := c.Query("status"); status != "" {
		parsed, err := domainClaims.ParseStatus(status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + status})
			return
		}
		filter.Status = parsed
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": result, "total": len(result)})
}

// History handles GET /claims/:id/history.
func (h *ClaimHandler) History(c *gin.Context) {
	events, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Operations handles GET /claims/:id/operations.
func (h *ClaimHandler) Operations(c *gin.Context) {
	ops, err := h.service.ValidOperations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

// Transition handles POST /claims/:id/transitions/:operation.
func (h *ClaimHandler) Transition(c *gin.Context) {
	op := domainClaims.Operation(c.Param("operation"))
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}
	cmd, err := decodeCommand(op, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.service.Transition(c.Request.Context(), CurrentActor(c), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

var errUnknownOperation = errors.New("unknown operation")

func decodeInto[T domainClaims.Command](body []byte) (domainClaims.Command, error) {
	var cmd T
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// decodeCommand maps an operation name to its typed command. createDraft is
// absent on purpose: creation has its own endpoint.
func decodeCommand(op domainClaims.Operation, body []byte) (domainClaims.Command, error) {
	if len(body) == 0 {
		body = []byte("{}")
	}

	switch op {
	case domainClaims.OpUpdateDraft:
		return decodeInto[domainClaims.UpdateDraftCommand](body)
	case domainClaims.OpCompleteIntake:
		return decodeInto[domainClaims.CompleteIntakeCommand](body)
	case domainClaims.OpSubmitDiagnostic:
		return decodeInto[domainClaims.SubmitDiagnosticCommand](body)
	case domainClaims.OpApprove:
		return decodeInto[domainClaims.ApproveCommand](body)
	case domainClaims.OpReject:
		return decodeInto[domainClaims.RejectCommand](body)
	case domainClaims.OpMarkReadyForRepair:
		return decodeInto[domainClaims.MarkReadyForRepairCommand](body)
	case domainClaims.OpReportProblem:
		return decodeInto[domainClaims.ReportProblemCommand](body)
	case domainClaims.OpResolveProblem:
		return decodeInto[domainClaims.ResolveProblemCommand](body)
	case domainClaims.OpResumeAfterProblem:
		return decodeInto[domainClaims.ResumeAfterProblemCommand](body)
	case domainClaims.OpMovePaymentPending:
		return decodeInto[domainClaims.MovePaymentPendingCommand](body)
	case domainClaims.OpRecordCustomerPaid:
		return decodeInto[domainClaims.RecordCustomerPaidCommand](body)
	case domainClaims.OpMarkReadyForHandover:
		return decodeInto[domainClaims.MarkReadyForHandoverCommand](body)
	case domainClaims.OpBeginHandover:
		return decodeInto[domainClaims.BeginHandoverCommand](body)
	case domainClaims.OpCompleteClaim:
		return decodeInto[domainClaims.CompleteClaimCommand](body)
	case domainClaims.OpRequestCancellation:
		return decodeInto[domainClaims.RequestCancellationCommand](body)
	case domainClaims.OpAcceptCancellation:
		return decodeInto[domainClaims.AcceptCancellationCommand](body)
	case domainClaims.OpReadyToHandoverCanceled:
		return decodeInto[domainClaims.ReadyToHandoverCanceledCommand](body)
	case domainClaims.OpCompleteCancellation:
		return decodeInto[domainClaims.CompleteCancellationCommand](body)
	default:
		return nil, errUnknownOperation
	}
}

// EligibilityHandler serves warranty eligibility checks.
type EligibilityHandler struct {
	service *appWarranty.EligibilityService
}

// NewEligibilityHandler creates a new eligibility handler.
func NewEligibilityHandler(service *appWarranty.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

// Check handles GET /vehicles/:id/eligibility.
func (h *EligibilityHandler) Check(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	result, err := h.service.Check(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckByVIN handles GET /vehicles/vin/:vin/eligibility.
func (h *EligibilityHandler) CheckByVIN(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	result, err := h.service.CheckByVIN(c.Request.Context(), c.Param("vin"), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now(), true
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC3339"})
		return time.Time{}, false
	}
	return asOf, true
}

// respondError maps domain errors onto HTTP statuses. The typed errors carry
// the payload the client renders.
func respondError(c *gin.Context, err error) {
	var (
		illegal     *domainClaims.IllegalTransitionError
		unauth      *domainClaims.UnauthorizedError
		validation  *domainClaims.ValidationError
		eligibility *domainClaims.EligibilityBlockedError
	)
	switch {
	case errors.As(err, &illegal):
		c.JSON(http.StatusConflict, gin.H{
			"error":        err.Error(),
			"currentState": illegal.CurrentState,
			"operation":    illegal.Operation,
		})
	case errors.As(err, &unauth):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"fields": validation.Fields,
		})
	case errors.As(err, &eligibility):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"reasons": eligibility.Reasons,
		})
	case errors.Is(err, domainClaims.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainClaims.ErrClaimNotFound),
		errors.Is(err, domainWarranty.ErrVehicleNotFound),
		errors.Is(err, domainWarranty.ErrConditionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
