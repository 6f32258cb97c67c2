package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/claims"
	appWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/warranty"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/idempotency"
)

// RouterConfig carries the dependencies of the HTTP surface.
type RouterConfig struct {
	Claims      *appClaims.ClaimService
	Eligibility *appWarranty.EligibilityService
	Idempotency idempotency.Store
	JWTSecret   string
	Logger      *zap.Logger
}

// NewRouter builds the REST API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(cfg.Logger), Recovery(cfg.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	claimHandler := NewClaimHandler(cfg.Claims, cfg.Logger)
	eligibilityHandler := NewEligibilityHandler(cfg.Eligibility)

	api := router.Group("/api/v1")
	api.Use(Auth(cfg.JWTSecret))

	claimsGroup := api.Group("/claims")
	{
		claimsGroup.GET("", claimHandler.List)
		claimsGroup.GET("/:id", claimHandler.Get)
		claimsGroup.GET("/:id/history", claimHandler.History)
		claimsGroup.GET("/:id/operations", claimHandler.Operations)

		mutating := claimsGroup.Group("")
		mutating.Use(Idempotent(cfg.Idempotency))
		mutating.POST("", claimHandler.Create)
		mutating.POST("/:id/transitions/:operation", claimHandler.Transition)
	}

	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("/:id/eligibility", eligibilityHandler.Check)
		vehicles.GET("/vin/:vin/eligibility", eligibilityHandler.CheckByVIN)
	}

	return router
}
