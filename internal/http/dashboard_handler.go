package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboardMetrics(c *gin.Context) {
	metrics, err := h.dashboard.Metrics(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) dashboardHealth(c *gin.Context) {
	cards, err := h.dashboard.HealthCards(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cards})
}

func (h *Handler) dashboardUtilization(c *gin.Context) {
	utilization, err := h.dashboard.Utilization(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilization)
}

func (h *Handler) dashboardProjections(c *gin.Context) {
	months, ok := queryMonths(c)
	if !ok {
		return
	}
	projection, err := h.dashboard.Projections(c.Request.Context(), months)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

func (h *Handler) dashboardAlerts(c *gin.Context) {
	alerts, err := h.dashboard.Alerts(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

func (h *Handler) dashboardComplete(c *gin.Context) {
	months, ok := queryMonths(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboard.Complete(c.Request.Context(), months)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) exportDashboard(c *gin.Context) {
	months, ok := queryMonths(c)
	if !ok {
		return
	}
	result, err := h.dashboard.Export(c.Request.Context(), months)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, result)
}
