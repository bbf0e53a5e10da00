package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/contract-tracker/internal/model"
)

type createResourceRequest struct {
	FirstName           string  `json:"first_name" binding:"required"`
	LastName            string  `json:"last_name" binding:"required"`
	Email               string  `json:"email" binding:"required"`
	Category            string  `json:"resource_type" binding:"required"`
	LCATID              *string `json:"lcat_id"`
	PayRate             float64 `json:"pay_rate"`
	ClearanceLevel      string  `json:"clearance_level"`
	ClearanceExpiration string  `json:"clearance_expiration"`
	StartDate           string  `json:"start_date"`
}

func (h *Handler) createResource(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	lcatID, err := parseOptionalUUID(req.LCATID)
	if err != nil {
		badRequest(c, "invalid lcat_id")
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}
	var expiration *time.Time
	if strings.TrimSpace(req.ClearanceExpiration) != "" {
		exp, err := parseDate(req.ClearanceExpiration)
		if err != nil {
			badRequest(c, "invalid clearance_expiration")
			return
		}
		expiration = &exp
	}

	resource, err := h.resources.Create(c.Request.Context(), principal, model.NewResourceInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Category:            model.ResourceCategory(strings.ToUpper(strings.TrimSpace(req.Category))),
		LCATID:              lcatID,
		PayRate:             req.PayRate,
		ClearanceLevel:      req.ClearanceLevel,
		ClearanceExpiration: expiration,
		StartDate:           start,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResource(resource))
}

func (h *Handler) listResources(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	list, err := h.resources.List(c.Request.Context(), active)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]resourceResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResource(r))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) getResource(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resource, err := h.resources.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResource(resource))
}

func (h *Handler) terminateResource(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req endDateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid end_date")
		return
	}

	resource, err := h.resources.Terminate(c.Request.Context(), principal, id, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResource(resource))
}

func (h *Handler) deleteResource(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.resources.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
