package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/http/middleware"
	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	resources *service.ResourceService
	lcats     *service.LCATService
	dashboard *service.DashboardService
	log       zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	resources *service.ResourceService,
	lcats *service.LCATService,
	dashboard *service.DashboardService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		resources: resources,
		lcats:     lcats,
		dashboard: dashboard,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	contracts := protected.Group("/contracts")
	contracts.POST("", h.createContract)
	contracts.GET("", h.listContracts)
	contracts.GET("/:id", h.getContract)
	contracts.DELETE("/:id", h.deleteContract)
	contracts.POST("/:id/activate", h.activateContract)
	contracts.POST("/:id/close", h.closeContract)
	contracts.POST("/:id/funding", h.updateFunding)
	contracts.POST("/:id/standard-hours", h.setStandardHours)
	contracts.POST("/:id/resources", h.assignResource)
	contracts.POST("/:id/resources/:resource_id/remove", h.removeResource)
	contracts.POST("/:id/resources/:resource_id/fixed-amount", h.setFixedMonthlyAmount)
	contracts.GET("/:id/resources/:resource_id/history", h.allocationHistory)
	contracts.POST("/:id/rates", h.setRateOverride)
	contracts.GET("/:id/burn-rate", h.burnRate)
	contracts.GET("/:id/burn-rate/pdf", h.burnRatePDF)

	resources := protected.Group("/resources")
	resources.POST("", h.createResource)
	resources.GET("", h.listResources)
	resources.GET("/:id", h.getResource)
	resources.POST("/:id/terminate", h.terminateResource)
	resources.DELETE("/:id", h.deleteResource)

	lcats := protected.Group("/lcats")
	lcats.POST("", h.createLCAT)
	lcats.GET("", h.listLCATs)
	lcats.POST("/batch-update-rates", h.batchUpdateLCATRates)
	lcats.GET("/:id", h.getLCAT)
	lcats.PUT("/:id", h.updateLCAT)
	lcats.DELETE("/:id", h.deleteLCAT)
	lcats.POST("/:id/rates", h.addLCATRate)
	lcats.GET("/:id/rates", h.lcatRateHistory)
	lcats.POST("/:id/titles", h.addPositionTitle)
	lcats.DELETE("/:id/titles/:title_id", h.deactivatePositionTitle)
	lcats.POST("/:id/deactivate", h.deactivateLCAT)
	lcats.POST("/:id/reactivate", h.reactivateLCAT)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/metrics", h.dashboardMetrics)
	dashboard.GET("/contracts/health", h.dashboardHealth)
	dashboard.GET("/resources/utilization", h.dashboardUtilization)
	dashboard.GET("/projections", h.dashboardProjections)
	dashboard.GET("/alerts", h.dashboardAlerts)
	dashboard.GET("/complete", h.dashboardComplete)
	dashboard.GET("/export", h.exportDashboard)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, model.ErrNotAssigned):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, model.ErrDuplicateAssignment),
		errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrFundingExceedsTotal), errors.Is(err, model.ErrFundingRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) sendFile(c *gin.Context, result *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// bindOptionalJSON binds the body when one is sent. Endpoints such as
// remove and terminate accept an empty body.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseOptionalDate returns the zero time for an empty value, which the
// services read as "now".
func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

func queryMonths(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("months"))
	if raw == "" {
		return service.DefaultProjectionMonths, true
	}
	months, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid months")
		return 0, false
	}
	return months, true
}
