package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/service"
)

type createContractRequest struct {
	Number           string  `json:"contract_number" binding:"required"`
	Name             string  `json:"name"`
	CustomerName     string  `json:"customer_name"`
	PrimeContractor  string  `json:"prime_contractor"`
	IsPrime          bool    `json:"is_prime"`
	Type             string  `json:"contract_type" binding:"required"`
	StartDate        string  `json:"start_date" binding:"required"`
	EndDate          string  `json:"end_date" binding:"required"`
	TotalValue       float64 `json:"total_value"`
	FundedValue      float64 `json:"funded_value"`
	StandardFTEHours float64 `json:"standard_fte_hours"`
	Description      string  `json:"description"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid end_date")
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), principal, service.CreateContractInput{
		NewContractInput: model.NewContractInput{
			Number:           req.Number,
			Name:             req.Name,
			CustomerName:     req.CustomerName,
			PrimeContractor:  req.PrimeContractor,
			IsPrime:          req.IsPrime,
			Type:             model.ContractType(strings.ToUpper(strings.TrimSpace(req.Type))),
			StartDate:        start,
			EndDate:          end,
			TotalValue:       req.TotalValue,
			StandardFTEHours: req.StandardFTEHours,
			Description:      req.Description,
		},
		FundedValue: req.FundedValue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContract(contract))
}

func (h *Handler) listContracts(c *gin.Context) {
	var status *model.ContractStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := model.ContractStatus(strings.ToUpper(raw))
		status = &s
	}
	list, err := h.contracts.List(c.Request.Context(), status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]contractResponse, 0, len(list))
	for _, contract := range list {
		out = append(out, toContract(contract))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContract(contract))
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) activateContract(c *gin.Context) {
	h.transition(c, h.contracts.Activate)
}

func (h *Handler) closeContract(c *gin.Context) {
	h.transition(c, h.contracts.Close)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contract, err := fn(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContract(contract))
}

type fundingRequest struct {
	FundedValue        *float64 `json:"funded_value" binding:"required"`
	Justification      string   `json:"justification" binding:"required"`
	ModificationNumber string   `json:"modification_number"`
}

func (h *Handler) updateFunding(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req fundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	mod, err := h.contracts.UpdateFunding(c.Request.Context(), principal, id, model.UpdateFundingInput{
		FundedValue:        *req.FundedValue,
		Justification:      req.Justification,
		ModificationNumber: req.ModificationNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toModification(mod))
}

type standardHoursRequest struct {
	Hours float64 `json:"standard_fte_hours" binding:"required"`
}

func (h *Handler) setStandardHours(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req standardHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	contract, err := h.contracts.SetStandardHours(c.Request.Context(), principal, id, req.Hours)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContract(contract))
}

type assignRequest struct {
	ResourceID         string   `json:"resource_id" binding:"required"`
	Percentage         float64  `json:"allocation_percentage" binding:"required"`
	StartDate          string   `json:"start_date"`
	AnnualHours        *float64 `json:"annual_hours"`
	FixedMonthlyAmount *float64 `json:"fixed_monthly_amount"`
}

func (h *Handler) assignResource(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	resourceID, err := uuid.Parse(strings.TrimSpace(req.ResourceID))
	if err != nil {
		badRequest(c, "invalid resource_id")
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}

	result, err := h.contracts.AssignResource(c.Request.Context(), principal, id, model.AssignInput{
		ResourceID:         resourceID,
		Percentage:         req.Percentage,
		StartDate:          start,
		AnnualHours:        req.AnnualHours,
		FixedMonthlyAmount: req.FixedMonthlyAmount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAssign(result))
}

type endDateRequest struct {
	EndDate string `json:"end_date"`
}

func (h *Handler) removeResource(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resourceID, ok := pathUUID(c, "resource_id")
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

	alloc, err := h.contracts.RemoveResource(c.Request.Context(), principal, id, resourceID, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocation(alloc))
}

// A null or missing amount returns the allocation to hours times rate.
type fixedAmountRequest struct {
	Amount *float64 `json:"fixed_monthly_amount"`
}

func (h *Handler) setFixedMonthlyAmount(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resourceID, ok := pathUUID(c, "resource_id")
	if !ok {
		return
	}
	var req fixedAmountRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	alloc, err := h.contracts.SetFixedMonthlyAmount(c.Request.Context(), principal, id, resourceID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocation(alloc))
}

func (h *Handler) allocationHistory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resourceID, ok := pathUUID(c, "resource_id")
	if !ok {
		return
	}
	history, err := h.contracts.AllocationHistory(c.Request.Context(), id, resourceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toAllocations(history)})
}

type rateOverrideRequest struct {
	LCATID        string  `json:"lcat_id" binding:"required"`
	Rate          float64 `json:"rate" binding:"required"`
	EffectiveDate string  `json:"effective_date"`
	Justification string  `json:"justification" binding:"required"`
}

func (h *Handler) setRateOverride(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req rateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	lcatID, err := uuid.Parse(strings.TrimSpace(req.LCATID))
	if err != nil {
		badRequest(c, "invalid lcat_id")
		return
	}
	effective, err := parseOptionalDate(req.EffectiveDate)
	if err != nil {
		badRequest(c, "invalid effective_date")
		return
	}

	override, err := h.contracts.SetRateOverride(c.Request.Context(), principal, id, service.RateOverrideInput{
		LCATID:        lcatID,
		Rate:          req.Rate,
		EffectiveDate: effective,
		Justification: req.Justification,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRateOverride(override))
}

func (h *Handler) burnRate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.contracts.BurnRate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) burnRatePDF(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.contracts.BurnRatePDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, result)
}
