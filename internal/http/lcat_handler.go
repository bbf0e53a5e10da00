package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/service"
)

type createLCATRequest struct {
	Code            string   `json:"code" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	PublishedRate   *float64 `json:"published_rate"`
	DefaultBillRate *float64 `json:"default_bill_rate"`
	EffectiveDate   string   `json:"effective_date"`
	PositionTitles  []string `json:"position_titles"`
}

func (h *Handler) createLCAT(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req createLCATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	effective, err := parseOptionalDate(req.EffectiveDate)
	if err != nil {
		badRequest(c, "invalid effective_date")
		return
	}

	lcat, err := h.lcats.Create(c.Request.Context(), principal, service.CreateLCATInput{
		NewLCATInput: model.NewLCATInput{
			Code:        req.Code,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
		},
		PublishedRate:   req.PublishedRate,
		DefaultBillRate: req.DefaultBillRate,
		EffectiveDate:   effective,
		PositionTitles:  req.PositionTitles,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLCAT(lcat))
}

func (h *Handler) listLCATs(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	list, err := h.lcats.List(c.Request.Context(), active)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]lcatResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLCAT(l))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) getLCAT(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	lcat, err := h.lcats.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLCAT(lcat))
}

type updateLCATRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) updateLCAT(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateLCATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	lcat, err := h.lcats.UpdateDetails(c.Request.Context(), principal, id, model.NewLCATInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLCAT(lcat))
}

func (h *Handler) deleteLCAT(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.lcats.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type lcatRateRequest struct {
	Kind          string  `json:"rate_type" binding:"required"`
	Rate          float64 `json:"rate" binding:"required"`
	EffectiveDate string  `json:"effective_date"`
	Notes         string  `json:"notes"`
}

func (h *Handler) addLCATRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req lcatRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	effective, err := parseOptionalDate(req.EffectiveDate)
	if err != nil {
		badRequest(c, "invalid effective_date")
		return
	}

	rec, err := h.lcats.AddRate(c.Request.Context(), principal, id, service.AddLCATRateInput{
		Kind:          model.RateKind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		Rate:          req.Rate,
		EffectiveDate: effective,
		Notes:         req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRate(rec))
}

func (h *Handler) lcatRateHistory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	kind := model.RateKind(strings.ToUpper(strings.TrimSpace(c.DefaultQuery("rate_type", string(model.RateKindDefaultBill)))))
	history, err := h.lcats.RateHistory(c.Request.Context(), id, kind)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]rateResponse, 0, len(history))
	for _, rec := range history {
		out = append(out, toRate(rec))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type batchRateEntry struct {
	LCATID string `json:"lcat_id" binding:"required"`
	lcatRateRequest
}

type batchRatesRequest struct {
	Updates []batchRateEntry `json:"updates" binding:"required,min=1,dive"`
}

func (h *Handler) batchUpdateLCATRates(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req batchRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	updates := make([]service.BatchRateUpdate, 0, len(req.Updates))
	for i, entry := range req.Updates {
		lcatID, err := uuid.Parse(strings.TrimSpace(entry.LCATID))
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid lcat_id in update %d", i+1))
			return
		}
		effective, err := parseOptionalDate(entry.EffectiveDate)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid effective_date in update %d", i+1))
			return
		}
		updates = append(updates, service.BatchRateUpdate{
			LCATID: lcatID,
			AddLCATRateInput: service.AddLCATRateInput{
				Kind:          model.RateKind(strings.ToUpper(strings.TrimSpace(entry.Kind))),
				Rate:          entry.Rate,
				EffectiveDate: effective,
				Notes:         entry.Notes,
			},
		})
	}

	records, err := h.lcats.BatchUpdateRates(c.Request.Context(), principal, updates)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]rateResponse, 0, len(records))
	for i, rec := range records {
		resp := toRate(rec)
		resp.LCATID = &updates[i].LCATID
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type positionTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) addPositionTitle(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req positionTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	title, err := h.lcats.AddPositionTitle(c.Request.Context(), principal, id, req.Title)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPositionTitle(title))
}

func (h *Handler) deactivatePositionTitle(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	titleID, ok := pathUUID(c, "title_id")
	if !ok {
		return
	}
	lcat, err := h.lcats.DeactivatePositionTitle(c.Request.Context(), principal, id, titleID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLCAT(lcat))
}

func (h *Handler) deactivateLCAT(c *gin.Context) {
	h.lcatStatus(c, h.lcats.Deactivate)
}

func (h *Handler) reactivateLCAT(c *gin.Context) {
	h.lcatStatus(c, h.lcats.Reactivate)
}

func (h *Handler) lcatStatus(c *gin.Context, fn func(ctx context.Context, p model.Principal, id uuid.UUID) (*model.LCAT, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	lcat, err := fn(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLCAT(lcat))
}
